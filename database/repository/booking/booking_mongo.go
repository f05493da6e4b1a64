// File: database/repository/booking/booking_mongo.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labcart/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateIdentifier
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"bookingId": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch booking %s failed: %w", bookingID, err)
	}
	return &booking, nil
}

func (r *mongoBookingRepo) ListByUserKey(ctx context.Context, userKey string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userKey": userKey}, opts)
	if err != nil {
		return nil, fmt.Errorf("list bookings for %s failed: %w", userKey, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings failed: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepo) UpdateStatus(ctx context.Context, bookingID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"bookingId": bookingID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepo) UpdateSchedule(ctx context.Context, bookingID string, key models.SlotKey, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"bookingId": bookingID},
		bson.M{"$set": bson.M{
			"labName":         key.LabName,
			"appointmentDate": key.Date,
			"appointmentTime": key.Time,
			"status":          status,
		}},
	)
	if err != nil {
		return fmt.Errorf("update booking schedule failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
