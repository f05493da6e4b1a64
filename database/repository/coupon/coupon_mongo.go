// File: database/repository/coupon/coupon_mongo.go
package couponRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labcart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoCouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var coupon models.Coupon
	err := r.couponColl.FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("coupon fetch failed: %w", err)
	}
	return &coupon, nil
}

func (r *mongoCouponRepo) HasRedeemed(ctx context.Context, code, userKey string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.redemptionColl.CountDocuments(ctx, bson.M{"code": code, "userKey": userKey})
	if err != nil {
		return false, fmt.Errorf("redemption lookup failed: %w", err)
	}
	return count > 0, nil
}

func (r *mongoCouponRepo) MarkRedeemed(ctx context.Context, code, userKey string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"code": code, "userKey": userKey}
	update := bson.M{"$setOnInsert": bson.M{
		"code":       code,
		"userKey":    userKey,
		"redeemedAt": time.Now(),
	}}
	_, err := r.redemptionColl.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mark coupon redeemed failed: %w", err)
	}
	return nil
}
