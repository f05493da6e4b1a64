// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"

	"labcart/config"
	"labcart/database"
	"labcart/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateIdentifier is returned when an insert collides with an existing
// bookingId or couponCode. Callers regenerate identifiers and retry.
var ErrDuplicateIdentifier = errors.New("booking identifier already exists")

// ErrNotFound is returned when no booking matches the query.
var ErrNotFound = errors.New("booking not found")

// BookingRepository is the durable booking store. Create must enforce
// bookingId and couponCode uniqueness.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByBookingID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByUserKey(ctx context.Context, userKey string) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, bookingID, status string) error
	UpdateSchedule(ctx context.Context, bookingID string, key models.SlotKey, status string) error
	EnsureIndexes() error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoBookingRepo{
		coll: db.Collection("bookings"),
	}
}
