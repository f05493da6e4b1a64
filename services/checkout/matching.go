package checkout

import (
	"context"
	"fmt"
	"sort"
	"strings"

	catalogRepo "labcart/database/repository/catalog"
	"labcart/models"
)

// DefaultMatchingService implements MatchingService over the vendor catalog.
type DefaultMatchingService struct {
	Catalog catalogRepo.CatalogRepository
}

// RequestedTestNames expands the cart into the deduplicated list of test
// names to fulfil. Packages contribute their included tests, never the
// package name itself.
func (s *DefaultMatchingService) RequestedTestNames(cart models.Cart) []string {
	seen := make(map[string]struct{})
	var names []string

	add := func(name string) {
		key := normalizeName(name)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		names = append(names, strings.TrimSpace(name))
	}

	for _, item := range cart.Items {
		if item.Kind == models.ItemKindPackage {
			for _, t := range item.IncludedTestNames {
				add(t)
			}
			continue
		}
		add(item.Name)
	}
	return names
}

// MatchLabs ranks candidate labs for the current cart snapshot. Labs that can
// run every requested test come first, then by coverage descending, then by
// name. An empty request list yields an empty lab list: booking with no
// tests selected is never offered "all labs".
func (s *DefaultMatchingService) MatchLabs(ctx context.Context, cart models.Cart) ([]models.RankedLab, error) {
	requested := s.RequestedTestNames(cart)
	if len(requested) == 0 {
		return []models.RankedLab{}, nil
	}

	labs, err := s.Catalog.GetLabsOfferingTests(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("failed to match labs: %w", err)
	}

	requestedSet := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		requestedSet[normalizeName(name)] = struct{}{}
	}

	ranked := make([]models.RankedLab, 0, len(labs))
	for _, lab := range labs {
		available := 0
		for _, t := range lab.TestsAvailable {
			if _, ok := requestedSet[normalizeName(t)]; ok {
				available++
			}
		}
		ranked = append(ranked, models.RankedLab{
			Name:                lab.Name,
			Address:             lab.Address,
			AvailableTestCount:  available,
			TotalTestsRequested: len(requested),
			HasAllTests:         available == len(requested),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].HasAllTests != ranked[j].HasAllTests {
			return ranked[i].HasAllTests
		}
		if ranked[i].AvailableTestCount != ranked[j].AvailableTestCount {
			return ranked[i].AvailableTestCount > ranked[j].AvailableTestCount
		}
		return ranked[i].Name < ranked[j].Name
	})

	return ranked, nil
}

// normalizeName lowercases and collapses interior whitespace so "Lipid
// Profile " and "lipid  profile" compare equal.
func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
