// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
// The unique indexes on bookingId and couponCode are what turns an identifier
// collision into ErrDuplicateIdentifier at insert time.
func (r *mongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bookingId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_booking_id"),
		},
		{
			Keys:    bson.D{{Key: "couponCode", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_coupon_code"),
		},
		// Primary query pattern: a user's booking history, newest first.
		{
			Keys:    bson.D{{Key: "userKey", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "labName", Value: 1}, {Key: "appointmentDate", Value: 1}},
			Options: options.Index().SetName("lab_date_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
