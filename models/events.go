package models

import "time"

// CartChangedEvent is published whenever an identity's cart mutates, so other
// sessions of the same identity can refresh their view.
type CartChangedEvent struct {
	UserKey   string    `json:"userKey"`
	ItemCount int       `json:"itemCount"`
	At        time.Time `json:"at"`
}

// BookingConfirmedEvent is published after the booking store acknowledges a
// commit, never before.
type BookingConfirmedEvent struct {
	BookingID  string    `json:"bookingId"`
	CouponCode string    `json:"couponCode"`
	UserKey    string    `json:"userKey"`
	At         time.Time `json:"at"`
}

// ConfirmationPayload is the asynq task payload for post-booking
// notifications.
type ConfirmationPayload struct {
	BookingID  string `json:"bookingId"`
	CouponCode string `json:"couponCode"`
	UserKey    string `json:"userKey"`
	Email      string `json:"email"`
	LabName    string `json:"labName"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}
