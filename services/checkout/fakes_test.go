package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	bookingRepo "labcart/database/repository/booking"
	couponRepo "labcart/database/repository/coupon"
	"labcart/models"
)

// fakeCouponRepo is an in-memory CouponRepository.
type fakeCouponRepo struct {
	coupons   map[string]models.Coupon
	redeemed  map[string]bool // code|userKey
	lookupErr error
}

func newFakeCouponRepo(coupons ...models.Coupon) *fakeCouponRepo {
	r := &fakeCouponRepo{
		coupons:  make(map[string]models.Coupon),
		redeemed: make(map[string]bool),
	}
	for _, c := range coupons {
		r.coupons[c.Code] = c
	}
	return r
}

func (r *fakeCouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	c, ok := r.coupons[code]
	if !ok {
		return nil, couponRepo.ErrCouponNotFound
	}
	return &c, nil
}

func (r *fakeCouponRepo) HasRedeemed(ctx context.Context, code, userKey string) (bool, error) {
	return r.redeemed[code+"|"+userKey], nil
}

func (r *fakeCouponRepo) MarkRedeemed(ctx context.Context, code, userKey string) error {
	r.redeemed[code+"|"+userKey] = true
	return nil
}

// fakeCatalogRepo serves a fixed set of tests and labs.
type fakeCatalogRepo struct {
	tests []models.LabTest
	labs  []models.Lab
}

func (r *fakeCatalogRepo) GetTestsByNames(ctx context.Context, names []string) ([]models.LabTest, error) {
	var out []models.LabTest
	for _, t := range r.tests {
		for _, name := range names {
			if strings.EqualFold(t.Name, name) {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) GetTestByID(ctx context.Context, id string) (*models.LabTest, error) {
	for _, t := range r.tests {
		if t.ID == id {
			tt := t
			return &tt, nil
		}
	}
	return nil, errors.New("test not found")
}

func (r *fakeCatalogRepo) GetLabsOfferingTests(ctx context.Context, names []string) ([]models.Lab, error) {
	var out []models.Lab
	for _, lab := range r.labs {
		for _, offered := range lab.TestsAvailable {
			matched := false
			for _, name := range names {
				if strings.EqualFold(offered, name) {
					out = append(out, lab)
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) GetLabByName(ctx context.Context, name string) (*models.Lab, error) {
	for _, lab := range r.labs {
		if lab.Name == name {
			l := lab
			return &l, nil
		}
	}
	return nil, errors.New("lab not found")
}

// fakeBookingRepo stores bookings in memory and can simulate identifier
// collisions for a configurable number of inserts.
type fakeBookingRepo struct {
	mu         sync.Mutex
	bookings   []models.Booking
	collisions int
	createErr  error
	attempts   int
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.createErr != nil {
		return r.createErr
	}
	if r.collisions > 0 {
		r.collisions--
		return bookingRepo.ErrDuplicateIdentifier
	}
	for _, b := range r.bookings {
		if b.BookingID == booking.BookingID || b.CouponCode == booking.CouponCode {
			return bookingRepo.ErrDuplicateIdentifier
		}
	}
	r.bookings = append(r.bookings, *booking)
	return nil
}

func (r *fakeBookingRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.BookingID == bookingID {
			bb := b
			return &bb, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) ListByUserKey(ctx context.Context, userKey string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserKey == userKey {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bookings {
		if r.bookings[i].BookingID == bookingID {
			r.bookings[i].Status = status
			return nil
		}
	}
	return bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) UpdateSchedule(ctx context.Context, bookingID string, key models.SlotKey, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bookings {
		if r.bookings[i].BookingID == bookingID {
			r.bookings[i].LabName = key.LabName
			r.bookings[i].AppointmentDate = key.Date
			r.bookings[i].AppointmentTime = key.Time
			r.bookings[i].Status = status
			return nil
		}
	}
	return bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) EnsureIndexes() error { return nil }

// fakeStateStore keeps wizard state per identity in memory.
type fakeStateStore struct {
	mu     sync.Mutex
	states map[string]models.WizardState
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]models.WizardState)}
}

func (s *fakeStateStore) Load(ctx context.Context, userKey string) (*models.WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[userKey]
	if !ok {
		return nil, nil
	}
	cp := state
	return &cp, nil
}

func (s *fakeStateStore) Save(ctx context.Context, userKey string, state *models.WizardState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userKey] = *state
	return nil
}

func (s *fakeStateStore) Delete(ctx context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userKey)
	return nil
}

// fakeCartService serves a fixed cart and records Clear calls.
type fakeCartService struct {
	carts   map[string]models.Cart
	cleared []string
}

func newFakeCartService() *fakeCartService {
	return &fakeCartService{carts: make(map[string]models.Cart)}
}

func (s *fakeCartService) Get(ctx context.Context, userKey string) (models.Cart, error) {
	cart, ok := s.carts[userKey]
	if !ok {
		return models.Cart{UserKey: userKey, Items: []models.CartItem{}}, nil
	}
	return cart, nil
}

func (s *fakeCartService) AddItem(ctx context.Context, userKey, testID string) (models.Cart, error) {
	return s.Get(ctx, userKey)
}

func (s *fakeCartService) RemoveItem(ctx context.Context, userKey, itemID string) (models.Cart, error) {
	return s.Get(ctx, userKey)
}

func (s *fakeCartService) Clear(ctx context.Context, userKey string) error {
	s.cleared = append(s.cleared, userKey)
	delete(s.carts, userKey)
	return nil
}

// fakePublisher records emitted events.
type fakePublisher struct {
	cartEvents    []models.CartChangedEvent
	bookingEvents []models.BookingConfirmedEvent
}

func (p *fakePublisher) CartChanged(ctx context.Context, event models.CartChangedEvent) error {
	p.cartEvents = append(p.cartEvents, event)
	return nil
}

func (p *fakePublisher) BookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error {
	p.bookingEvents = append(p.bookingEvents, event)
	return nil
}

// fakeEnqueuer records confirmation payloads.
type fakeEnqueuer struct {
	payloads []models.ConfirmationPayload
}

func (e *fakeEnqueuer) EnqueueConfirmation(payload models.ConfirmationPayload) error {
	e.payloads = append(e.payloads, payload)
	return nil
}

// sequenceRand yields the given strings in order, ignoring the requested
// length, then repeats the last one.
func sequenceRand(values ...string) RandomSource {
	i := 0
	return func(n int) string {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
}
