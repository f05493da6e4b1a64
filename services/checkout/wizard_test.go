package checkout

import (
	"context"
	"testing"
	"time"

	"labcart/models"
	"labcart/services/slotlock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wizardFixture struct {
	svc     *DefaultWizardService
	carts   *fakeCartService
	states  *fakeStateStore
	booking *fakeBookingRepo
	coupons *fakeCouponRepo
	locks   slotlock.Manager
	events  *fakePublisher
	tasks   *fakeEnqueuer
}

func newWizardFixture() *wizardFixture {
	catalog := &fakeCatalogRepo{
		labs: []models.Lab{
			{Name: "CityLab", Address: "1 Main St", TestsAvailable: []string{"CBC", "Lipid Profile"}},
			{Name: "PartialLab", Address: "2 Main St", TestsAvailable: []string{"CBC"}},
		},
	}
	coupons := newFakeCouponRepo(
		models.Coupon{Code: "SAVE10", DiscountType: models.DiscountPercent, DiscountValue: 10},
	)
	carts := newFakeCartService()
	states := newFakeStateStore()
	booking := &fakeBookingRepo{}
	locks := slotlock.NewMemoryManager(10 * time.Minute)
	events := &fakePublisher{}
	tasks := &fakeEnqueuer{}

	svc := &DefaultWizardService{
		CartSvc:     carts,
		MatchingSvc: &DefaultMatchingService{Catalog: catalog},
		Locks:       locks,
		Discounts:   &DefaultDiscountEngine{Coupons: coupons, Now: fixedNow},
		IDs: &IdentifierGenerator{
			Rand:  DefaultRandomSource(),
			Repo:  booking,
			Now:   fixedNow,
			Sleep: func(time.Duration) {},
		},
		CatalogRepo: catalog,
		States:      states,
		StateTTL:    24 * time.Hour,
		Events:      events,
		Tasks:       tasks,
		Now:         fixedNow,
	}
	return &wizardFixture{
		svc: svc, carts: carts, states: states, booking: booking,
		coupons: coupons, locks: locks, events: events, tasks: tasks,
	}
}

func (f *wizardFixture) seedCart(userKey string) {
	f.carts.carts[userKey] = models.Cart{
		UserKey: userKey,
		Items: []models.CartItem{
			{ID: "t1", Kind: models.ItemKindTest, Name: "CBC", Price: 400,
				LabPrices: map[string]float64{"CityLab": 350}},
			{ID: "t2", Kind: models.ItemKindTest, Name: "Lipid Profile", Price: 600},
		},
	}
}

func validPatient() models.PatientDetails {
	return models.PatientDetails{
		Name:    "Asha Rao",
		Age:     34,
		Contact: "9876543210",
		Email:   "asha@example.com",
	}
}

func validSelection() models.ScheduleSelection {
	return models.ScheduleSelection{LabName: "CityLab", Date: "2026-09-10", Time: "09:30"}
}

// advanceToReview walks one identity through to the review step.
func (f *wizardFixture) advanceToReview(t *testing.T, userKey string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.BeginCheckout(ctx, userKey)
	require.NoError(t, err)
	_, err = f.svc.SubmitPatientDetails(ctx, userKey, validPatient(), models.BookingForSelf)
	require.NoError(t, err)
	_, _, err = f.svc.SelectSchedule(ctx, userKey, validSelection())
	require.NoError(t, err)
}

func TestStartCheckoutFreshIdentity(t *testing.T) {
	f := newWizardFixture()
	state, cart, err := f.svc.StartCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepCart, state.Step)
	assert.Empty(t, cart.Items)
}

func TestStartCheckoutRestoresSavedProgress(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	saved := models.WizardState{
		Step:        models.StepSchedule,
		Patient:     validPatient(),
		BookingFor:  models.BookingForSelf,
		LastUpdated: fixedNow().Add(-time.Hour),
	}
	require.NoError(t, f.states.Save(context.Background(), "user-1", &saved))

	state, cart, err := f.svc.StartCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepSchedule, state.Step)
	assert.Equal(t, "Asha Rao", state.Patient.Name)
	assert.Len(t, cart.Items, 2)
}

func TestStartCheckoutDiscardsProgressWhenCartEmpty(t *testing.T) {
	f := newWizardFixture()
	saved := models.WizardState{Step: models.StepReview, LastUpdated: fixedNow()}
	require.NoError(t, f.states.Save(context.Background(), "user-1", &saved))

	state, _, err := f.svc.StartCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepCart, state.Step)

	stored, err := f.states.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestStartCheckoutNeverRestoresStaleState(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	saved := models.WizardState{
		Step:        models.StepSchedule,
		Patient:     validPatient(),
		BookingFor:  models.BookingForSelf,
		LastUpdated: fixedNow().Add(-25 * time.Hour),
	}
	require.NoError(t, f.states.Save(context.Background(), "user-1", &saved))

	state, _, err := f.svc.StartCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepCart, state.Step)
	assert.Empty(t, state.Patient.Name)

	stored, err := f.states.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, stored, "day-old progress is deleted, not kept around")
}

func TestSelectScheduleTreatsStaleStateAsMissing(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	saved := models.WizardState{
		Step:        models.StepSchedule,
		Patient:     validPatient(),
		BookingFor:  models.BookingForSelf,
		LastUpdated: fixedNow().Add(-25 * time.Hour),
	}
	require.NoError(t, f.states.Save(context.Background(), "user-1", &saved))

	_, _, err := f.svc.SelectSchedule(context.Background(), "user-1", validSelection())
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestBeginCheckoutRequiresItems(t *testing.T) {
	f := newWizardFixture()
	_, err := f.svc.BeginCheckout(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))

	f.seedCart("user-1")
	state, err := f.svc.BeginCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepPatientDetails, state.Step)
}

func TestSubmitPatientDetailsAdvancesAndPersists(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()

	_, err := f.svc.BeginCheckout(ctx, "user-1")
	require.NoError(t, err)

	state, err := f.svc.SubmitPatientDetails(ctx, "user-1", validPatient(), models.BookingForSelf)
	require.NoError(t, err)
	assert.Equal(t, models.StepSchedule, state.Step)

	stored, err := f.states.Load(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.StepSchedule, stored.Step)
	assert.Equal(t, "asha@example.com", stored.Patient.Email)
}

func TestSubmitPatientDetailsRejectsInvalidInput(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()

	_, err := f.svc.BeginCheckout(ctx, "user-1")
	require.NoError(t, err)

	bad := validPatient()
	bad.Contact = "123"
	_, err = f.svc.SubmitPatientDetails(ctx, "user-1", bad, models.BookingForSelf)
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))

	// The step did not advance.
	stored, err := f.states.Load(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.StepPatientDetails, stored.Step)
}

func TestSelectScheduleRequiresPatientDetailsFirst(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()

	_, _, err := f.svc.SelectSchedule(ctx, "user-1", validSelection())
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestSelectScheduleValidatesSelection(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()
	_, err := f.svc.BeginCheckout(ctx, "user-1")
	require.NoError(t, err)
	_, err = f.svc.SubmitPatientDetails(ctx, "user-1", validPatient(), models.BookingForSelf)
	require.NoError(t, err)

	tests := []struct {
		name string
		sel  models.ScheduleSelection
	}{
		{"past date", models.ScheduleSelection{LabName: "CityLab", Date: "2026-08-01", Time: "09:30"}},
		{"bad date format", models.ScheduleSelection{LabName: "CityLab", Date: "10-09-2026", Time: "09:30"}},
		{"missing time", models.ScheduleSelection{LabName: "CityLab", Date: "2026-09-10"}},
		{"unknown lab", models.ScheduleSelection{LabName: "GhostLab", Date: "2026-09-10", Time: "09:30"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.SelectSchedule(ctx, "user-1", tc.sel)
			require.Error(t, err)
			assert.Equal(t, CodeValidation, CodeOf(err))
		})
	}
}

func TestSelectSchedulePartialLabNeedsAcknowledgement(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()
	_, err := f.svc.BeginCheckout(ctx, "user-1")
	require.NoError(t, err)
	_, err = f.svc.SubmitPatientDetails(ctx, "user-1", validPatient(), models.BookingForSelf)
	require.NoError(t, err)

	sel := models.ScheduleSelection{LabName: "PartialLab", Date: "2026-09-10", Time: "09:30"}
	_, _, err = f.svc.SelectSchedule(ctx, "user-1", sel)
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))

	sel.ConfirmPartial = true
	state, lock, err := f.svc.SelectSchedule(ctx, "user-1", sel)
	require.NoError(t, err)
	assert.Equal(t, models.StepReview, state.Step)
	assert.Equal(t, "user-1", lock.HolderID)
}

func TestSelectScheduleHoldsSlotExclusively(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	f.seedCart("user-2")
	ctx := context.Background()

	f.advanceToReview(t, "user-1")

	// A second identity cannot take the held slot.
	_, err := f.svc.BeginCheckout(ctx, "user-2")
	require.NoError(t, err)
	_, err = f.svc.SubmitPatientDetails(ctx, "user-2", validPatient(), models.BookingForSelf)
	require.NoError(t, err)
	_, _, err = f.svc.SelectSchedule(ctx, "user-2", validSelection())
	assert.ErrorIs(t, err, slotlock.ErrSlotConflict)

	// The schedule selection is never written to the persisted state.
	stored, err := f.states.Load(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.StepReview, stored.Step)
}

func TestQuoteOrderAppliesStoredCoupon(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()

	_, err := f.svc.BeginCheckout(ctx, "user-1")
	require.NoError(t, err)
	_, err = f.svc.ApplyCoupon(ctx, "user-1", "SAVE10")
	require.NoError(t, err)

	quote, err := f.svc.QuoteOrder(ctx, "user-1", "CityLab")
	require.NoError(t, err)
	// CityLab price override: 350 + 600 = 950, minus 10%.
	assert.InDelta(t, 950.0, quote.OrderTotal, 0.001)
	assert.InDelta(t, 95.0, quote.TotalDiscount, 0.001)
	assert.InDelta(t, 855.0, quote.PayableTotal, 0.001)

	var perItem float64
	for _, line := range quote.Items {
		perItem += line.DiscountAmount
	}
	assert.InDelta(t, quote.TotalDiscount, perItem, 0.001)
}

func TestApplyCouponRejectsUnknownCode(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")

	_, err := f.svc.ApplyCoupon(context.Background(), "user-1", "NOPE")
	require.Error(t, err)
	assert.Equal(t, CodeCoupon, CodeOf(err))

	// A failed coupon never blocks the rest of checkout.
	state, err := f.svc.BeginCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepPatientDetails, state.Step)
}

func TestConfirmRequiresReviewStep(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()

	_, err := f.svc.BeginCheckout(ctx, "user-1")
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, "user-1", validSelection())
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestConfirmHappyPath(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()

	_, err := f.svc.ApplyCoupon(ctx, "user-1", "SAVE10")
	require.NoError(t, err)
	f.advanceToReview(t, "user-1")

	booking, err := f.svc.Confirm(ctx, "user-1", validSelection())
	require.NoError(t, err)

	assert.NotEmpty(t, booking.BookingID)
	assert.NotEmpty(t, booking.CouponCode)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, "CityLab", booking.LabName)
	assert.Equal(t, "1 Main St", booking.LabAddress)
	assert.Equal(t, "2026-09-10", booking.AppointmentDate)
	assert.Equal(t, "09:30", booking.AppointmentTime)
	assert.Equal(t, "SAVE10", booking.CouponApplied)
	assert.InDelta(t, 95.0, booking.DiscountTotal, 0.001)
	assert.InDelta(t, 855.0, booking.TotalAmount, 0.001)
	assert.Len(t, booking.Tests, 2)

	// The booking is durably stored and the slot is terminally booked.
	stored, err := f.booking.GetByBookingID(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.UserKey)

	key := models.SlotKey{LabName: "CityLab", Date: "2026-09-10", Time: "09:30"}
	_, err = f.locks.Acquire(ctx, key, "user-2")
	assert.ErrorIs(t, err, slotlock.ErrSlotBooked)

	// Cart and wizard state are gone; downstream consumers were notified.
	assert.Contains(t, f.carts.cleared, "user-1")
	state, err := f.states.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, state)
	require.Len(t, f.events.bookingEvents, 1)
	assert.Equal(t, booking.BookingID, f.events.bookingEvents[0].BookingID)
	require.Len(t, f.tasks.payloads, 1)
	assert.Equal(t, booking.BookingID, f.tasks.payloads[0].BookingID)
}

func TestConfirmFailsWhenSlotHeldByAnother(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()

	f.advanceToReview(t, "user-1")
	// Simulate the hold expiring and someone else grabbing the slot.
	key := models.SlotKey{LabName: "CityLab", Date: "2026-09-10", Time: "09:30"}
	require.NoError(t, f.locks.Release(ctx, key, "user-1"))
	_, err := f.locks.Acquire(ctx, key, "rival")
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, "user-1", validSelection())
	assert.ErrorIs(t, err, slotlock.ErrSlotConflict)
	assert.Empty(t, f.booking.bookings)
}

func TestConfirmFreesSlotWhenInsertFails(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()

	f.advanceToReview(t, "user-1")
	f.booking.collisions = 100 // every insert collides

	_, err := f.svc.Confirm(ctx, "user-1", validSelection())
	require.Error(t, err)
	assert.Equal(t, CodeBookingFailed, CodeOf(err))
	assert.Empty(t, f.booking.bookings)

	// The confirmed slot was rolled back; anyone can take it again.
	key := models.SlotKey{LabName: "CityLab", Date: "2026-09-10", Time: "09:30"}
	_, err = f.locks.Acquire(ctx, key, "user-2")
	assert.NoError(t, err)
}

func TestConfirmRevalidatesCoupon(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()

	_, err := f.svc.ApplyCoupon(ctx, "user-1", "SAVE10")
	require.NoError(t, err)
	f.advanceToReview(t, "user-1")

	// The coupon expires between review and confirm.
	expired := fixedNow().Add(-time.Hour)
	c := f.coupons.coupons["SAVE10"]
	c.ValidTo = &expired
	f.coupons.coupons["SAVE10"] = c

	_, err = f.svc.Confirm(ctx, "user-1", validSelection())
	require.Error(t, err)
	assert.Equal(t, CodeCoupon, CodeOf(err))
	assert.Empty(t, f.booking.bookings)
}

func TestCancelReleasesHoldAndClearsState(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	f.seedCart("user-2")
	ctx := context.Background()

	f.advanceToReview(t, "user-1")
	sel := validSelection()
	require.NoError(t, f.svc.Cancel(ctx, "user-1", &sel))

	state, err := f.states.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, state)

	// The slot is free for the next identity.
	_, err = f.svc.BeginCheckout(ctx, "user-2")
	require.NoError(t, err)
	_, err = f.svc.SubmitPatientDetails(ctx, "user-2", validPatient(), models.BookingForSelf)
	require.NoError(t, err)
	_, _, err = f.svc.SelectSchedule(ctx, "user-2", validSelection())
	assert.NoError(t, err)
}

func TestUnavailableTimesReflectsHolds(t *testing.T) {
	f := newWizardFixture()
	f.seedCart("user-1")
	ctx := context.Background()

	times, err := f.svc.UnavailableTimes(ctx, "CityLab", "2026-09-10")
	require.NoError(t, err)
	assert.Empty(t, times)

	f.advanceToReview(t, "user-1")
	times, err = f.svc.UnavailableTimes(ctx, "CityLab", "2026-09-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30"}, times)
}
