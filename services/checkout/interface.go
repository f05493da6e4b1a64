package checkout

import (
	"context"
	"time"

	catalogRepo "labcart/database/repository/catalog"
	"labcart/models"
	"labcart/services/slotlock"
)

// CartService owns per-identity carts.
type CartService interface {
	Get(ctx context.Context, userKey string) (models.Cart, error)
	AddItem(ctx context.Context, userKey, testID string) (models.Cart, error)
	RemoveItem(ctx context.Context, userKey, itemID string) (models.Cart, error)
	Clear(ctx context.Context, userKey string) error
}

// MatchingService ranks labs against the current cart snapshot.
type MatchingService interface {
	RequestedTestNames(cart models.Cart) []string
	MatchLabs(ctx context.Context, cart models.Cart) ([]models.RankedLab, error)
}

// DiscountEngine validates coupons and distributes discounts across items.
type DiscountEngine interface {
	Validate(ctx context.Context, code string, orderAmount float64, userKey string) (*models.Coupon, error)
	MarkRedeemed(ctx context.Context, coupon *models.Coupon, userKey string) error
}

// StateStore persists the restorable slice of wizard progress.
type StateStore interface {
	Load(ctx context.Context, userKey string) (*models.WizardState, error)
	Save(ctx context.Context, userKey string, state *models.WizardState) error
	Delete(ctx context.Context, userKey string) error
}

// Publisher fans checkout events out to other sessions of the same identity.
type Publisher interface {
	CartChanged(ctx context.Context, event models.CartChangedEvent) error
	BookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error
}

// ConfirmationEnqueuer schedules post-booking notification work.
type ConfirmationEnqueuer interface {
	EnqueueConfirmation(payload models.ConfirmationPayload) error
}

// WizardService drives the checkout wizard:
// Cart -> PatientDetails -> Schedule -> Review -> Confirmed.
type WizardService interface {
	StartCheckout(ctx context.Context, userKey string) (*models.WizardState, models.Cart, error)
	BeginCheckout(ctx context.Context, userKey string) (*models.WizardState, error)
	SubmitPatientDetails(ctx context.Context, userKey string, details models.PatientDetails, bookingFor string) (*models.WizardState, error)
	ApplyCoupon(ctx context.Context, userKey, code string) (*models.WizardState, error)
	ClearCoupon(ctx context.Context, userKey string) (*models.WizardState, error)
	Labs(ctx context.Context, userKey string) ([]models.RankedLab, error)
	UnavailableTimes(ctx context.Context, labName, date string) ([]string, error)
	SelectSchedule(ctx context.Context, userKey string, sel models.ScheduleSelection) (*models.WizardState, *models.SlotLock, error)
	QuoteOrder(ctx context.Context, userKey string, labName string) (*models.DiscountBreakdown, error)
	Confirm(ctx context.Context, userKey string, sel models.ScheduleSelection) (*models.Booking, error)
	Cancel(ctx context.Context, userKey string, sel *models.ScheduleSelection) error
}

// DefaultWizardService implements WizardService.
type DefaultWizardService struct {
	CartSvc     CartService
	MatchingSvc MatchingService
	Locks       slotlock.Manager
	Discounts   DiscountEngine
	IDs         *IdentifierGenerator
	CatalogRepo catalogRepo.CatalogRepository
	States      StateStore
	// StateTTL bounds how old a persisted WizardState may be before it is
	// discarded instead of restored. Zero disables the guard.
	StateTTL time.Duration
	Events   Publisher
	Tasks    ConfirmationEnqueuer
	Now      func() time.Time
}

func (s *DefaultWizardService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
