package checkout

import (
	"context"
	"fmt"

	"labcart/models"
	"labcart/utils"

	"go.uber.org/zap"
)

// StartCheckout loads or creates the wizard for one identity. A persisted
// state is restored only when it is fresher than the wizard TTL and the cart
// is non-empty; anything else starts over at the cart step. Restored state
// never contains a lab/date/time selection: the schedule must be re-confirmed
// against live slot availability every session.
func (s *DefaultWizardService) StartCheckout(ctx context.Context, userKey string) (*models.WizardState, models.Cart, error) {
	cart, err := s.CartSvc.Get(ctx, userKey)
	if err != nil {
		return nil, models.Cart{}, err
	}

	state, err := s.freshState(ctx, userKey)
	if err != nil {
		return nil, models.Cart{}, err
	}
	if state != nil && len(cart.Items) > 0 {
		return state, cart, nil
	}
	if state != nil {
		// Saved progress with an empty cart is meaningless; discard it.
		_ = s.States.Delete(ctx, userKey)
	}
	return &models.WizardState{Step: models.StepCart, LastUpdated: s.now()}, cart, nil
}

// BeginCheckout advances Cart -> PatientDetails. The only gate is a
// non-empty cart.
func (s *DefaultWizardService) BeginCheckout(ctx context.Context, userKey string) (*models.WizardState, error) {
	cart, err := s.CartSvc.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, NewValidationError("cart is empty")
	}

	state, err := s.loadOrNew(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if state.Step == models.StepCart {
		state.Step = models.StepPatientDetails
	}
	if err := s.save(ctx, userKey, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SubmitPatientDetails validates and stores the patient details, advancing
// PatientDetails -> Schedule. Invalid input leaves the step unchanged.
func (s *DefaultWizardService) SubmitPatientDetails(ctx context.Context, userKey string, details models.PatientDetails, bookingFor string) (*models.WizardState, error) {
	cart, err := s.CartSvc.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, NewValidationError("cart is empty")
	}
	if err := validatePatientDetails(details, bookingFor); err != nil {
		return nil, err
	}

	state, err := s.loadOrNew(ctx, userKey)
	if err != nil {
		return nil, err
	}
	state.Patient = details
	state.BookingFor = bookingFor
	if state.Step == models.StepCart || state.Step == models.StepPatientDetails {
		state.Step = models.StepSchedule
	}
	if err := s.save(ctx, userKey, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ApplyCoupon validates a code against the current order total and records
// it on the wizard. A CouponError is surfaced inline and leaves the state
// untouched; checkout without a coupon is never blocked.
func (s *DefaultWizardService) ApplyCoupon(ctx context.Context, userKey, code string) (*models.WizardState, error) {
	cart, err := s.CartSvc.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, NewValidationError("cart is empty")
	}

	coupon, err := s.Discounts.Validate(ctx, code, cart.Total(), userKey)
	if err != nil {
		return nil, err
	}

	state, err := s.loadOrNew(ctx, userKey)
	if err != nil {
		return nil, err
	}
	state.Coupon = coupon
	if err := s.save(ctx, userKey, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *DefaultWizardService) ClearCoupon(ctx context.Context, userKey string) (*models.WizardState, error) {
	state, err := s.loadOrNew(ctx, userKey)
	if err != nil {
		return nil, err
	}
	state.Coupon = nil
	if err := s.save(ctx, userKey, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Labs returns the ranked candidate labs for the current cart.
func (s *DefaultWizardService) Labs(ctx context.Context, userKey string) ([]models.RankedLab, error) {
	cart, err := s.CartSvc.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}
	return s.MatchingSvc.MatchLabs(ctx, cart)
}

// UnavailableTimes lists the held or booked times for a lab/date so the
// client can grey them out.
func (s *DefaultWizardService) UnavailableTimes(ctx context.Context, labName, date string) ([]string, error) {
	return s.Locks.ListUnavailable(ctx, labName, date)
}

// SelectSchedule acquires an exclusive hold on the chosen slot under this
// identity and advances Schedule -> Review. The hold's TTL is refreshed on
// every re-selection by the same identity while the user stays on the
// schedule step.
func (s *DefaultWizardService) SelectSchedule(ctx context.Context, userKey string, sel models.ScheduleSelection) (*models.WizardState, *models.SlotLock, error) {
	state, err := s.freshState(ctx, userKey)
	if err != nil {
		return nil, nil, err
	}
	if state == nil || state.Step == models.StepCart || state.Step == models.StepPatientDetails {
		return nil, nil, NewValidationError("patient details must be completed before scheduling")
	}
	if err := validateAppointmentDate(sel.Date, s.now()); err != nil {
		return nil, nil, err
	}
	if sel.Time == "" {
		return nil, nil, NewValidationError("a time slot is required")
	}

	cart, err := s.CartSvc.Get(ctx, userKey)
	if err != nil {
		return nil, nil, err
	}
	ranked, err := s.MatchingSvc.MatchLabs(ctx, cart)
	if err != nil {
		return nil, nil, err
	}
	var chosen *models.RankedLab
	for i := range ranked {
		if ranked[i].Name == sel.LabName {
			chosen = &ranked[i]
			break
		}
	}
	if chosen == nil {
		return nil, nil, NewValidationError(fmt.Sprintf("lab %q is not a candidate for this cart", sel.LabName))
	}
	if !chosen.HasAllTests && !sel.ConfirmPartial {
		return nil, nil, NewValidationError(fmt.Sprintf(
			"lab %q can run %d of %d requested tests; partial fulfilment must be confirmed",
			chosen.Name, chosen.AvailableTestCount, chosen.TotalTestsRequested))
	}

	key := models.SlotKey{LabName: sel.LabName, Date: sel.Date, Time: sel.Time}
	lock, err := s.Locks.Acquire(ctx, key, userKey)
	if err != nil {
		return nil, nil, err
	}

	state.Step = models.StepReview
	if err := s.save(ctx, userKey, state); err != nil {
		return nil, nil, err
	}
	return state, lock, nil
}

// QuoteOrder prices the cart for the chosen lab and applies the wizard's
// coupon, if any.
func (s *DefaultWizardService) QuoteOrder(ctx context.Context, userKey string, labName string) (*models.DiscountBreakdown, error) {
	cart, err := s.CartSvc.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}
	lines := PriceLines(cart.Items, labName)

	state, err := s.freshState(ctx, userKey)
	if err != nil {
		return nil, err
	}
	var coupon *models.Coupon
	if state != nil {
		coupon = state.Coupon
	}
	breakdown := ApplyCoupon(coupon, lines)
	return &breakdown, nil
}

// Confirm executes Review -> Confirmed: re-acquire the hold (catching
// expiry), confirm it, and commit the booking. Any failure leaves the wizard
// at Review and surfaces the specific cause; a storage failure after the
// slot was confirmed releases the slot back to Free so it is not leaked.
func (s *DefaultWizardService) Confirm(ctx context.Context, userKey string, sel models.ScheduleSelection) (*models.Booking, error) {
	logger := utils.GetLogger()

	state, err := s.freshState(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Step != models.StepReview {
		return nil, NewValidationError("order must be reviewed before confirming")
	}
	cart, err := s.CartSvc.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, NewValidationError("cart is empty")
	}
	if err := validateAppointmentDate(sel.Date, s.now()); err != nil {
		return nil, err
	}

	// Idempotent re-acquire: an expired or stolen hold fails here as a slot
	// conflict instead of silently booking over someone else.
	key := models.SlotKey{LabName: sel.LabName, Date: sel.Date, Time: sel.Time}
	if _, err := s.Locks.Acquire(ctx, key, userKey); err != nil {
		return nil, err
	}

	lines := PriceLines(cart.Items, sel.LabName)
	coupon := state.Coupon
	if coupon != nil {
		// Re-validate: the coupon may have expired or been redeemed since it
		// was applied.
		coupon, err = s.Discounts.Validate(ctx, coupon.Code, OrderTotal(lines), userKey)
		if err != nil {
			return nil, err
		}
	}
	breakdown := ApplyCoupon(coupon, lines)

	lab, err := s.CatalogRepo.GetLabByName(ctx, sel.LabName)
	if err != nil {
		return nil, NewStorageError(fmt.Sprintf("lab lookup failed: %v", err))
	}

	if err := s.Locks.Confirm(ctx, key, userKey); err != nil {
		return nil, err
	}

	tests := make([]models.BookedTest, 0, len(breakdown.Items))
	for _, line := range breakdown.Items {
		tests = append(tests, models.BookedTest{
			Name:           line.Name,
			OriginalAmount: line.OriginalAmount,
			DiscountAmount: line.DiscountAmount,
			FinalAmount:    line.FinalAmount,
		})
	}
	booking := &models.Booking{
		Tests:           tests,
		LabName:         lab.Name,
		LabAddress:      lab.Address,
		AppointmentDate: sel.Date,
		AppointmentTime: sel.Time,
		Patient:         state.Patient,
		BookingFor:      state.BookingFor,
		Status:          models.BookingStatusConfirmed,
		CouponApplied:   breakdown.CouponCode,
		DiscountTotal:   breakdown.TotalDiscount,
		TotalAmount:     breakdown.PayableTotal,
		UserKey:         userKey,
		CreatedAt:       s.now(),
	}

	if err := s.IDs.CreateWithRetry(ctx, booking); err != nil {
		// The slot was already confirmed; free it again so the failed commit
		// does not leak it permanently.
		if uerr := s.Locks.Unbook(ctx, key); uerr != nil {
			logger.Error("failed to free slot after booking commit failure",
				zap.String("labName", key.LabName),
				zap.String("date", key.Date),
				zap.String("time", key.Time),
				zap.Error(uerr))
		}
		return nil, err
	}

	if err := s.Discounts.MarkRedeemed(ctx, coupon, userKey); err != nil {
		logger.Warn("failed to mark coupon redeemed",
			zap.String("bookingId", booking.BookingID), zap.Error(err))
	}
	if err := s.CartSvc.Clear(ctx, userKey); err != nil {
		logger.Warn("failed to clear cart after booking",
			zap.String("bookingId", booking.BookingID), zap.Error(err))
	}
	_ = s.States.Delete(ctx, userKey)

	event := models.BookingConfirmedEvent{
		BookingID:  booking.BookingID,
		CouponCode: booking.CouponCode,
		UserKey:    userKey,
		At:         s.now(),
	}
	if s.Events != nil {
		if err := s.Events.BookingConfirmed(ctx, event); err != nil {
			logger.Warn("failed to publish booking confirmation", zap.Error(err))
		}
	}
	if s.Tasks != nil {
		payload := models.ConfirmationPayload{
			BookingID:  booking.BookingID,
			CouponCode: booking.CouponCode,
			UserKey:    userKey,
			Email:      booking.Patient.Email,
			LabName:    booking.LabName,
			Date:       booking.AppointmentDate,
			Time:       booking.AppointmentTime,
		}
		if err := s.Tasks.EnqueueConfirmation(payload); err != nil {
			logger.Warn("failed to enqueue confirmation task",
				zap.String("bookingId", booking.BookingID), zap.Error(err))
		}
	}

	logger.Info("booking confirmed",
		zap.String("bookingId", booking.BookingID),
		zap.String("labName", booking.LabName),
		zap.String("date", booking.AppointmentDate),
		zap.String("time", booking.AppointmentTime))
	return booking, nil
}

// Cancel returns the wizard to the cart step, releasing any hold the
// identity has on the submitted selection so locks are not leaked.
func (s *DefaultWizardService) Cancel(ctx context.Context, userKey string, sel *models.ScheduleSelection) error {
	if sel != nil {
		key := models.SlotKey{LabName: sel.LabName, Date: sel.Date, Time: sel.Time}
		if err := s.Locks.Release(ctx, key, userKey); err != nil {
			return err
		}
	}
	return s.States.Delete(ctx, userKey)
}

func (s *DefaultWizardService) loadOrNew(ctx context.Context, userKey string) (*models.WizardState, error) {
	state, err := s.freshState(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &models.WizardState{Step: models.StepCart, LastUpdated: s.now()}
	}
	return state, nil
}

// freshState loads the persisted wizard state, treating anything older than
// StateTTL as absent. The guard runs here as well as in the store so a key
// that outlives its Redis expiry still cannot resurrect day-old progress.
func (s *DefaultWizardService) freshState(ctx context.Context, userKey string) (*models.WizardState, error) {
	state, err := s.States.Load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}
	if s.StateTTL > 0 && s.now().Sub(state.LastUpdated) > s.StateTTL {
		_ = s.States.Delete(ctx, userKey)
		return nil, nil
	}
	return state, nil
}

// save stamps the state before persisting so the freshness guard measures
// real inactivity.
func (s *DefaultWizardService) save(ctx context.Context, userKey string, state *models.WizardState) error {
	state.LastUpdated = s.now()
	return s.States.Save(ctx, userKey, state)
}
