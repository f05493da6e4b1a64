package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	couponRepo "labcart/database/repository/coupon"
	"labcart/models"
)

// DefaultDiscountEngine implements DiscountEngine over the coupon store.
type DefaultDiscountEngine struct {
	Coupons couponRepo.CouponRepository
	Now     func() time.Time
}

func (e *DefaultDiscountEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Validate checks a coupon code against an order total for one user. Every
// failure is a CouponError the wizard surfaces inline.
func (e *DefaultDiscountEngine) Validate(ctx context.Context, code string, orderAmount float64, userKey string) (*models.Coupon, error) {
	coupon, err := e.Coupons.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, couponRepo.ErrCouponNotFound) {
			return nil, NewCouponError(fmt.Sprintf("coupon %q not found", code))
		}
		return nil, NewStorageError(fmt.Sprintf("coupon lookup failed: %v", err))
	}

	if coupon.ValidTo != nil && coupon.ValidTo.Before(e.now()) {
		return nil, NewCouponError(fmt.Sprintf("coupon %q has expired", code))
	}
	if coupon.MinOrderAmount > 0 && orderAmount < coupon.MinOrderAmount {
		return nil, NewCouponError(fmt.Sprintf("order total %.2f is below the %.2f minimum for %q",
			orderAmount, coupon.MinOrderAmount, code))
	}
	if coupon.SingleUse {
		redeemed, err := e.Coupons.HasRedeemed(ctx, code, userKey)
		if err != nil {
			return nil, NewStorageError(fmt.Sprintf("redemption lookup failed: %v", err))
		}
		if redeemed {
			return nil, NewCouponError(fmt.Sprintf("coupon %q was already used", code))
		}
	}
	return coupon, nil
}

// MarkRedeemed records a single-use redemption after a committed booking.
func (e *DefaultDiscountEngine) MarkRedeemed(ctx context.Context, coupon *models.Coupon, userKey string) error {
	if coupon == nil || !coupon.SingleUse {
		return nil
	}
	return e.Coupons.MarkRedeemed(ctx, coupon.Code, userKey)
}

// TotalDiscount computes the order-level discount for a coupon. Flat coupons
// never discount more than the order itself.
func TotalDiscount(coupon *models.Coupon, orderAmount float64) float64 {
	if coupon == nil || orderAmount <= 0 {
		return 0
	}
	switch coupon.DiscountType {
	case models.DiscountPercent:
		return round2(orderAmount * coupon.DiscountValue / 100)
	case models.DiscountFlat:
		if coupon.DiscountValue > orderAmount {
			return round2(orderAmount)
		}
		return round2(coupon.DiscountValue)
	default:
		return 0
	}
}

// ApplyCoupon distributes the coupon's discount across the priced lines,
// proportionally to each line's share of the pre-discount total. Rounding
// drift is folded into the last line so the per-item discounts always sum to
// the total discount.
func ApplyCoupon(coupon *models.Coupon, lines []models.ItemDiscount) models.DiscountBreakdown {
	orderTotal := OrderTotal(lines)
	breakdown := models.DiscountBreakdown{
		OrderTotal:   orderTotal,
		PayableTotal: orderTotal,
		Items:        make([]models.ItemDiscount, len(lines)),
	}
	copy(breakdown.Items, lines)

	totalDiscount := TotalDiscount(coupon, orderTotal)
	if totalDiscount == 0 {
		return breakdown
	}
	breakdown.CouponCode = coupon.Code
	breakdown.TotalDiscount = totalDiscount
	breakdown.PayableTotal = round2(orderTotal - totalDiscount)

	var distributed float64
	for i := range breakdown.Items {
		line := &breakdown.Items[i]
		if i == len(breakdown.Items)-1 {
			// Last line absorbs the rounding remainder.
			line.DiscountAmount = round2(totalDiscount - distributed)
		} else {
			line.DiscountAmount = round2(totalDiscount * line.OriginalAmount / orderTotal)
			distributed = round2(distributed + line.DiscountAmount)
		}
		line.FinalAmount = round2(line.OriginalAmount - line.DiscountAmount)
	}
	return breakdown
}
