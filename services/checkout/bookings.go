package checkout

import (
	"context"
	"fmt"

	bookingRepo "labcart/database/repository/booking"
	"labcart/models"
	"labcart/services/slotlock"
	"labcart/utils"

	"go.uber.org/zap"
)

// BookingService manages committed bookings after checkout.
type BookingService interface {
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userKey string) ([]models.Booking, error)
	CancelBooking(ctx context.Context, userKey, bookingID string) error
	RescheduleBooking(ctx context.Context, userKey, bookingID string, sel models.ScheduleSelection) (*models.Booking, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo  bookingRepo.BookingRepository
	Locks slotlock.Manager
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.Repo.GetByBookingID(ctx, bookingID)
}

func (s *DefaultBookingService) ListUserBookings(ctx context.Context, userKey string) ([]models.Booking, error) {
	return s.Repo.ListByUserKey(ctx, userKey)
}

// CancelBooking transitions a booking to Cancelled and frees its confirmed
// slot, making the exact (lab, date, time) tuple bookable again.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, userKey, bookingID string) error {
	booking, err := s.Repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserKey != userKey {
		return NewValidationError("booking does not belong to this user")
	}
	if booking.Status == models.BookingStatusCancelled {
		return NewValidationError("booking is already cancelled")
	}

	if err := s.Repo.UpdateStatus(ctx, bookingID, models.BookingStatusCancelled); err != nil {
		return NewStorageError(fmt.Sprintf("cancel booking failed: %v", err))
	}

	key := models.SlotKey{
		LabName: booking.LabName,
		Date:    booking.AppointmentDate,
		Time:    booking.AppointmentTime,
	}
	if err := s.Locks.Unbook(ctx, key); err != nil {
		utils.GetLogger().Error("failed to free slot for cancelled booking",
			zap.String("bookingId", bookingID), zap.Error(err))
	}
	return nil
}

// RescheduleBooking re-runs slot acquisition for the new selection, confirms
// it, then frees the old slot. The old slot is freed only after the new one
// is secured so the user never ends up with neither.
func (s *DefaultBookingService) RescheduleBooking(ctx context.Context, userKey, bookingID string, sel models.ScheduleSelection) (*models.Booking, error) {
	booking, err := s.Repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserKey != userKey {
		return nil, NewValidationError("booking does not belong to this user")
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, NewValidationError("a cancelled booking cannot be rescheduled")
	}
	if sel.LabName != booking.LabName {
		return nil, NewValidationError("rescheduling must stay at the booked lab")
	}

	newKey := models.SlotKey{LabName: sel.LabName, Date: sel.Date, Time: sel.Time}
	oldKey := models.SlotKey{
		LabName: booking.LabName,
		Date:    booking.AppointmentDate,
		Time:    booking.AppointmentTime,
	}
	if newKey == oldKey {
		return booking, nil
	}

	if _, err := s.Locks.Acquire(ctx, newKey, userKey); err != nil {
		return nil, err
	}
	if err := s.Locks.Confirm(ctx, newKey, userKey); err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateSchedule(ctx, bookingID, newKey, models.BookingStatusRescheduled); err != nil {
		// Put the new slot back; the booking still points at the old one.
		if uerr := s.Locks.Unbook(ctx, newKey); uerr != nil {
			utils.GetLogger().Error("failed to free slot after reschedule failure",
				zap.String("bookingId", bookingID), zap.Error(uerr))
		}
		return nil, NewStorageError(fmt.Sprintf("reschedule update failed: %v", err))
	}

	if err := s.Locks.Unbook(ctx, oldKey); err != nil {
		utils.GetLogger().Error("failed to free old slot after reschedule",
			zap.String("bookingId", bookingID), zap.Error(err))
	}

	booking.AppointmentDate = sel.Date
	booking.AppointmentTime = sel.Time
	booking.Status = models.BookingStatusRescheduled
	return booking, nil
}
