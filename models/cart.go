package models

import "time"

// ItemKind distinguishes an individual test from a multi-test package.
type ItemKind string

const (
	ItemKindTest    ItemKind = "test"
	ItemKindPackage ItemKind = "package"
)

// CartItem is one entry in a user's cart. Items are immutable once added;
// the only mutation the cart allows is removal.
type CartItem struct {
	ID       string   `bson:"id" json:"id"`
	Kind     ItemKind `bson:"kind" json:"kind"`
	Name     string   `bson:"name" json:"name"`
	Category string   `bson:"category" json:"category"`
	Price    float64  `bson:"price" json:"price"`
	// LabPrices overrides Price per lab, keyed by lab name. A missing entry
	// falls back to Price.
	LabPrices map[string]float64 `bson:"labPrices,omitempty" json:"labPrices,omitempty"`
	// IncludedTestNames is non-empty only for packages.
	IncludedTestNames []string `bson:"includedTestNames,omitempty" json:"includedTestNames,omitempty"`
}

// Cart is the ordered list of items for one identity key.
type Cart struct {
	UserKey   string     `json:"userKey"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Total returns the pre-discount cart total at catalog prices.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price
	}
	return total
}
