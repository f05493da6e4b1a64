package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	bookingRepo "labcart/database/repository/booking"
	"labcart/models"
	"labcart/utils"

	"go.uber.org/zap"
)

const idCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandomSource produces n random characters for identifier suffixes. Tests
// inject a deterministic source to force collision sequences.
type RandomSource func(n int) string

// DefaultRandomSource returns a seeded, mutex-guarded source.
func DefaultRandomSource() RandomSource {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func(n int) string {
		mu.Lock()
		defer mu.Unlock()
		b := make([]byte, n)
		for i := range b {
			b[i] = idCharset[rng.Intn(len(idCharset))]
		}
		return string(b)
	}
}

// IdentifierGenerator produces booking IDs and reward coupon codes and
// retries booking inserts on uniqueness conflicts, up to a bound.
type IdentifierGenerator struct {
	Rand  RandomSource
	Repo  bookingRepo.BookingRepository
	Now   func() time.Time
	Sleep func(time.Duration)
}

func (g *IdentifierGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *IdentifierGenerator) sleep(d time.Duration) {
	if g.Sleep != nil {
		g.Sleep(d)
		return
	}
	time.Sleep(d)
}

// NewBookingID produces a candidate booking ID: a date prefix plus a random
// suffix, e.g. "LC-20260829-X7K2QF".
func (g *IdentifierGenerator) NewBookingID() string {
	return fmt.Sprintf("LC-%s-%s", g.now().Format("20060102"), g.Rand(6))
}

// NewCouponCode produces a candidate 8-character reward coupon code.
func (g *IdentifierGenerator) NewCouponCode() string {
	return g.Rand(8)
}

// CreateWithRetry inserts the booking, regenerating both identifiers and
// backing off briefly on each uniqueness conflict. After maxAttempts the
// attempt fails fatally: collisions are expected to be exceedingly rare, so
// repeated failure is a systemic problem, not something to mask with an
// unbounded loop.
func (g *IdentifierGenerator) CreateWithRetry(ctx context.Context, booking *models.Booking) error {
	const maxAttempts = 5
	logger := utils.GetLogger()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		booking.BookingID = g.NewBookingID()
		booking.CouponCode = g.NewCouponCode()

		err := g.Repo.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, bookingRepo.ErrDuplicateIdentifier) {
			return NewStorageError(fmt.Sprintf("booking insert failed: %v", err))
		}

		logger.Warn("booking identifier collision, regenerating",
			zap.Int("attempt", attempt),
			zap.String("bookingId", booking.BookingID))
		if attempt < maxAttempts {
			g.sleep(time.Duration(attempt) * 50 * time.Millisecond)
		}
	}
	return NewBookingFailedError("could not allocate a unique booking identifier")
}
