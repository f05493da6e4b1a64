package checkout

import (
	"math"
	"strings"

	"labcart/models"
)

// ResolveItemPrice looks up the lab-specific price for a cart item. The map
// is keyed by lab name; a direct hit wins, then a case/whitespace-normalized
// match, and finally the generic catalog price. A missing match is a
// fallback, not an error.
func ResolveItemPrice(item models.CartItem, labName string) float64 {
	if len(item.LabPrices) == 0 {
		return item.Price
	}
	if price, ok := item.LabPrices[labName]; ok {
		return price
	}
	want := foldLabName(labName)
	for name, price := range item.LabPrices {
		if foldLabName(name) == want {
			return price
		}
	}
	return item.Price
}

// foldLabName lowercases and strips all whitespace so "City Lab" and
// "citylab" compare equal. Lab names differ from test names here: price map
// keys are often written compact while the catalog spells them out, so the
// fold removes spacing entirely instead of collapsing it.
func foldLabName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

// PriceLines resolves every cart item against the chosen lab, producing the
// undiscounted order lines.
func PriceLines(items []models.CartItem, labName string) []models.ItemDiscount {
	lines := make([]models.ItemDiscount, 0, len(items))
	for _, item := range items {
		amount := round2(ResolveItemPrice(item, labName))
		lines = append(lines, models.ItemDiscount{
			ItemID:         item.ID,
			Name:           item.Name,
			OriginalAmount: amount,
			FinalAmount:    amount,
		})
	}
	return lines
}

// OrderTotal sums the pre-discount line amounts.
func OrderTotal(lines []models.ItemDiscount) float64 {
	var total float64
	for _, line := range lines {
		total += line.OriginalAmount
	}
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
