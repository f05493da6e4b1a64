// File: database/repository/coupon/interface.go
package couponRepo

import (
	"context"
	"errors"

	"labcart/config"
	"labcart/database"
	"labcart/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrCouponNotFound is returned when no coupon matches the given code.
var ErrCouponNotFound = errors.New("coupon not found")

// CouponRepository is the external coupon store consumed by the discount
// engine.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	HasRedeemed(ctx context.Context, code, userKey string) (bool, error)
	MarkRedeemed(ctx context.Context, code, userKey string) error
}

type mongoCouponRepo struct {
	couponColl     *mongo.Collection
	redemptionColl *mongo.Collection
}

// NewMongoCouponRepo constructs a new MongoDB CouponRepository.
func NewMongoCouponRepo() CouponRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoCouponRepo{
		couponColl:     db.Collection("coupons"),
		redemptionColl: db.Collection("coupon_redemptions"),
	}
}
