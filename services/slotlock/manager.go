// Package slotlock grants short-lived exclusive holds on (lab, date, time)
// appointment slots. A slot has one live holder at most; holds expire by TTL,
// are released explicitly, or are converted into a permanent booking on
// confirmation.
package slotlock

import (
	"context"
	"errors"
	"fmt"

	"labcart/models"
)

var (
	// ErrSlotConflict means another session holds the slot. The caller must
	// re-query availability and let the user pick again.
	ErrSlotConflict = errors.New("slot is held by another session")
	// ErrSlotBooked means the slot was already confirmed into a booking.
	ErrSlotBooked = errors.New("slot is already booked")
	// ErrNotHolder means the caller tried to confirm a slot it does not hold.
	ErrNotHolder = errors.New("slot is not held by this session")
)

// Manager is the slot lock state machine:
// Free -> Held(holder, expiry) -> {Released -> Free, Confirmed -> terminal,
// Expired -> Free}. Confirmed goes back to Free only through Unbook (booking
// cancellation). Every operation is a single atomic check-and-set against the
// backing store, safe under arbitrary interleaving from independent clients.
type Manager interface {
	// Acquire succeeds when the slot is free, expired, or already held by the
	// same holder; the same-holder case refreshes the TTL. It fails with
	// ErrSlotConflict or ErrSlotBooked otherwise.
	Acquire(ctx context.Context, key models.SlotKey, holderID string) (*models.SlotLock, error)
	// Release frees the slot if held by holderID; absent or foreign holds are
	// a no-op.
	Release(ctx context.Context, key models.SlotKey, holderID string) error
	// Confirm converts a hold into a permanent booking. Only the current
	// holder may confirm.
	Confirm(ctx context.Context, key models.SlotKey, holderID string) error
	// Unbook frees a confirmed slot after its booking is cancelled.
	Unbook(ctx context.Context, key models.SlotKey) error
	// ListUnavailable returns the times for a lab/date that are currently
	// held or booked, for rendering unavailable slots to other users.
	ListUnavailable(ctx context.Context, labName, date string) ([]string, error)
}

func holdKey(key models.SlotKey) string {
	return fmt.Sprintf("slot:hold:%s|%s|%s", key.LabName, key.Date, key.Time)
}

func bookedKey(labName, date string) string {
	return fmt.Sprintf("slot:booked:%s|%s", labName, date)
}
