package handlers

import (
	"net/http"

	"labcart/middleware"
	"labcart/models"
	"labcart/services/checkout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the committed-booking endpoints.
type BookingHandler struct {
	BookingSvc checkout.BookingService
	Logger     *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookingSvc checkout.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{BookingSvc: bookingSvc, Logger: logger}
}

// ListBookings handles GET /api/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.BookingSvc.ListUserBookings(c.Request.Context(), middleware.UserKey(c))
	if err != nil {
		h.Logger.Error("ListBookings: failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking handles GET /api/bookings/:bookingId.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.BookingSvc.GetBooking(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CancelBooking handles POST /api/bookings/:bookingId/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("bookingId")
	if err := h.BookingSvc.CancelBooking(c.Request.Context(), middleware.UserKey(c), bookingID); err != nil {
		h.Logger.Warn("CancelBooking: failed", zap.String("bookingId", bookingID), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.BookingStatusCancelled})
}

// RescheduleBooking handles POST /api/bookings/:bookingId/reschedule.
func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	var input models.ScheduleSelection
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	booking, err := h.BookingSvc.RescheduleBooking(c.Request.Context(), middleware.UserKey(c), c.Param("bookingId"), input)
	if err != nil {
		h.Logger.Warn("RescheduleBooking: failed",
			zap.String("bookingId", c.Param("bookingId")), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}
