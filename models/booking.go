package models

import "time"

// Booking statuses.
const (
	BookingStatusConfirmed   = "Confirmed"
	BookingStatusRescheduled = "Rescheduled"
	BookingStatusCancelled   = "Cancelled"
)

// BookedTest is one priced line of a booking, carrying its share of any
// applied discount.
type BookedTest struct {
	Name           string  `bson:"name" json:"name"`
	OriginalAmount float64 `bson:"originalAmount" json:"originalAmount"`
	DiscountAmount float64 `bson:"discountAmount" json:"discountAmount"`
	FinalAmount    float64 `bson:"finalAmount" json:"finalAmount"`
}

// Booking is a confirmed appointment record. BookingID and CouponCode are
// globally unique, enforced by the booking store.
type Booking struct {
	ID              string         `bson:"id" json:"id"`
	BookingID       string         `bson:"bookingId" json:"bookingId"`
	CouponCode      string         `bson:"couponCode" json:"couponCode"`
	Tests           []BookedTest   `bson:"tests" json:"tests"`
	LabName         string         `bson:"labName" json:"labName"`
	LabAddress      string         `bson:"labAddress" json:"labAddress"`
	AppointmentDate string         `bson:"appointmentDate" json:"appointmentDate"`
	AppointmentTime string         `bson:"appointmentTime" json:"appointmentTime"`
	Patient         PatientDetails `bson:"patient" json:"patient"`
	BookingFor      string         `bson:"bookingFor" json:"bookingFor"`
	Status          string         `bson:"status" json:"status"`
	CouponApplied   string         `bson:"couponApplied,omitempty" json:"couponApplied,omitempty"`
	DiscountTotal   float64        `bson:"discountTotal" json:"discountTotal"`
	TotalAmount     float64        `bson:"totalAmount" json:"totalAmount"`
	UserKey         string         `bson:"userKey,omitempty" json:"userKey,omitempty"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt"`
}
