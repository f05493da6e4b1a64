package models

import "strings"

// Lab is a diagnostics lab as stored in the vendor catalog.
type Lab struct {
	Name           string   `bson:"name" json:"name"`
	Address        string   `bson:"address" json:"address"`
	TestsAvailable []string `bson:"testsAvailable" json:"testsAvailable"`
}

// RankedLab is the matcher's view of a lab for one cart snapshot. It is
// computed fresh per request and never persisted.
type RankedLab struct {
	Name                string `json:"name"`
	Address             string `json:"address"`
	AvailableTestCount  int    `json:"availableTestCount"`
	TotalTestsRequested int    `json:"totalTestsRequested"`
	HasAllTests         bool   `json:"hasAllTests"`
}

// LabTest is a catalog entry for an individual test or a package. Legacy
// catalog records carry a category list instead of a single string; both
// shapes are accepted and normalized through NormalizedCategory.
type LabTest struct {
	ID                string             `bson:"id" json:"id"`
	Kind              ItemKind           `bson:"kind" json:"kind"`
	Name              string             `bson:"name" json:"name"`
	Category          string             `bson:"category,omitempty" json:"category,omitempty"`
	Categories        []string           `bson:"categories,omitempty" json:"categories,omitempty"`
	Price             float64            `bson:"price" json:"price"`
	LabPrices         map[string]float64 `bson:"labPrices,omitempty" json:"labPrices,omitempty"`
	IncludedTestNames []string           `bson:"includedTestNames,omitempty" json:"includedTestNames,omitempty"`
}

// NormalizedCategory resolves the category regardless of source shape.
func (t LabTest) NormalizedCategory() string {
	if c := strings.TrimSpace(t.Category); c != "" {
		return c
	}
	for _, c := range t.Categories {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}
