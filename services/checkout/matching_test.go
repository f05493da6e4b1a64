package checkout

import (
	"context"
	"testing"

	"labcart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestedTestNamesExpandsPackages(t *testing.T) {
	svc := &DefaultMatchingService{}
	cart := models.Cart{Items: []models.CartItem{
		{ID: "1", Kind: models.ItemKindTest, Name: "CBC"},
		{ID: "2", Kind: models.ItemKindPackage, Name: "Full Body",
			IncludedTestNames: []string{"CBC", "Lipid Profile", "Thyroid Panel"}},
		{ID: "3", Kind: models.ItemKindTest, Name: "lipid  profile"},
	}}

	names := svc.RequestedTestNames(cart)

	// Package names never appear; duplicates collapse regardless of case and
	// interior whitespace.
	assert.Equal(t, []string{"CBC", "Lipid Profile", "Thyroid Panel"}, names)
}

func TestRequestedTestNamesEmptyCart(t *testing.T) {
	svc := &DefaultMatchingService{}
	assert.Empty(t, svc.RequestedTestNames(models.Cart{}))
}

func TestMatchLabsEmptyCartYieldsNoLabs(t *testing.T) {
	svc := &DefaultMatchingService{Catalog: &fakeCatalogRepo{
		labs: []models.Lab{{Name: "CityLab", TestsAvailable: []string{"CBC"}}},
	}}

	ranked, err := svc.MatchLabs(context.Background(), models.Cart{})
	require.NoError(t, err)
	assert.Empty(t, ranked, "no tests selected must never mean all labs")
}

func TestMatchLabsRanking(t *testing.T) {
	catalog := &fakeCatalogRepo{labs: []models.Lab{
		{Name: "PartialLab", Address: "1 Main St", TestsAvailable: []string{"CBC"}},
		{Name: "FullLabB", Address: "2 Main St", TestsAvailable: []string{"CBC", "Lipid Profile", "Thyroid Panel"}},
		{Name: "FullLabA", Address: "3 Main St", TestsAvailable: []string{"cbc", "LIPID PROFILE"}},
		{Name: "BetterPartial", Address: "4 Main St", TestsAvailable: []string{"CBC", "Thyroid Panel"}},
	}}
	svc := &DefaultMatchingService{Catalog: catalog}

	cart := models.Cart{Items: []models.CartItem{
		{ID: "1", Kind: models.ItemKindTest, Name: "CBC"},
		{ID: "2", Kind: models.ItemKindTest, Name: "Lipid Profile"},
	}}

	ranked, err := svc.MatchLabs(context.Background(), cart)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	// Full-coverage labs first, alphabetical within a tier; then partial labs
	// by descending coverage.
	assert.Equal(t, "FullLabA", ranked[0].Name)
	assert.True(t, ranked[0].HasAllTests)
	assert.Equal(t, "FullLabB", ranked[1].Name)
	assert.True(t, ranked[1].HasAllTests)

	assert.False(t, ranked[2].HasAllTests)
	assert.Equal(t, 2, ranked[0].TotalTestsRequested)
	assert.Equal(t, 1, ranked[2].AvailableTestCount)
	assert.Equal(t, 1, ranked[3].AvailableTestCount)
}

func TestMatchLabsPartialCoverageCounts(t *testing.T) {
	catalog := &fakeCatalogRepo{labs: []models.Lab{
		{Name: "CityLab", TestsAvailable: []string{"CBC", "Vitamin D"}},
	}}
	svc := &DefaultMatchingService{Catalog: catalog}

	cart := models.Cart{Items: []models.CartItem{
		{ID: "1", Kind: models.ItemKindTest, Name: "CBC"},
		{ID: "2", Kind: models.ItemKindTest, Name: "Lipid Profile"},
		{ID: "3", Kind: models.ItemKindTest, Name: "Vitamin D"},
	}}

	ranked, err := svc.MatchLabs(context.Background(), cart)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 2, ranked[0].AvailableTestCount)
	assert.Equal(t, 3, ranked[0].TotalTestsRequested)
	assert.False(t, ranked[0].HasAllTests)
}
