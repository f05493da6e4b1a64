package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct so route
// registration takes a single argument.
type HandlerBundle struct {
	// Cart endpoints
	GetCart        gin.HandlerFunc
	AddCartItem    gin.HandlerFunc
	RemoveCartItem gin.HandlerFunc

	// Checkout wizard endpoints
	StartCheckout        gin.HandlerFunc
	BeginCheckout        gin.HandlerFunc
	SubmitPatientDetails gin.HandlerFunc
	ApplyCoupon          gin.HandlerFunc
	ClearCoupon          gin.HandlerFunc
	GetLabs              gin.HandlerFunc
	GetUnavailableSlots  gin.HandlerFunc
	SelectSchedule       gin.HandlerFunc
	QuoteOrder           gin.HandlerFunc
	ConfirmBooking       gin.HandlerFunc
	CancelCheckout       gin.HandlerFunc

	// Committed booking endpoints
	ListBookings      gin.HandlerFunc
	GetBooking        gin.HandlerFunc
	CancelBooking     gin.HandlerFunc
	RescheduleBooking gin.HandlerFunc
}
