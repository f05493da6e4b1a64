package handlers

import (
	"errors"
	"net/http"

	bookingRepo "labcart/database/repository/booking"
	"labcart/services/checkout"
	"labcart/services/slotlock"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses with a stable error
// code the client can branch on.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, slotlock.ErrSlotConflict), errors.Is(err, slotlock.ErrSlotBooked),
		errors.Is(err, slotlock.ErrNotHolder):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "slotConflict",
			"message": err.Error(),
		})
	case errors.Is(err, bookingRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "notFound",
			"message": err.Error(),
		})
	default:
		switch checkout.CodeOf(err) {
		case checkout.CodeValidation:
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   checkout.CodeValidation,
				"message": err.Error(),
			})
		case checkout.CodeCoupon:
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   checkout.CodeCoupon,
				"message": err.Error(),
			})
		case checkout.CodeBookingFailed:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   checkout.CodeBookingFailed,
				"message": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   checkout.CodeStorage,
				"message": err.Error(),
			})
		}
	}
}
