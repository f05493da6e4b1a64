package models

import "time"

// DiscountType is how a coupon's value is interpreted.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFlat    DiscountType = "flat"
)

// Coupon is a discount code validated against an order total.
type Coupon struct {
	Code           string       `bson:"code" json:"code"`
	DiscountType   DiscountType `bson:"discountType" json:"discountType"`
	DiscountValue  float64      `bson:"discountValue" json:"discountValue"`
	MinOrderAmount float64      `bson:"minOrderAmount,omitempty" json:"minOrderAmount,omitempty"`
	SingleUse      bool         `bson:"singleUse,omitempty" json:"singleUse,omitempty"`
	ValidTo        *time.Time   `bson:"validTo,omitempty" json:"validTo,omitempty"`
}

// ItemDiscount is the per-item share of an applied coupon.
type ItemDiscount struct {
	ItemID         string  `json:"itemId"`
	Name           string  `json:"name"`
	OriginalAmount float64 `json:"originalAmount"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalAmount    float64 `json:"finalAmount"`
}

// DiscountBreakdown is the result of applying one coupon to a cart.
type DiscountBreakdown struct {
	CouponCode    string         `json:"couponCode"`
	OrderTotal    float64        `json:"orderTotal"`
	TotalDiscount float64        `json:"totalDiscount"`
	PayableTotal  float64        `json:"payableTotal"`
	Items         []ItemDiscount `json:"items"`
}
