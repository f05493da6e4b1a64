package handlers

import (
	"net/http"

	"labcart/middleware"
	"labcart/models"
	"labcart/services/checkout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckoutHandler exposes the checkout wizard endpoints.
type CheckoutHandler struct {
	WizardSvc checkout.WizardService
	Logger    *zap.Logger
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(wizardSvc checkout.WizardService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{WizardSvc: wizardSvc, Logger: logger}
}

// StartCheckout handles POST /api/checkout/session. It restores persisted
// progress when fresh, otherwise starts at the cart step.
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	userKey := middleware.UserKey(c)
	state, cart, err := h.WizardSvc.StartCheckout(c.Request.Context(), userKey)
	if err != nil {
		h.Logger.Error("StartCheckout: failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state": state,
		"cart":  cart,
	})
}

// BeginCheckout handles POST /api/checkout/begin.
func (h *CheckoutHandler) BeginCheckout(c *gin.Context) {
	state, err := h.WizardSvc.BeginCheckout(c.Request.Context(), middleware.UserKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// SubmitPatientDetails handles PUT /api/checkout/patient-details.
func (h *CheckoutHandler) SubmitPatientDetails(c *gin.Context) {
	var input struct {
		Patient    models.PatientDetails `json:"patient" binding:"required"`
		BookingFor string                `json:"bookingFor" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	state, err := h.WizardSvc.SubmitPatientDetails(c.Request.Context(), middleware.UserKey(c), input.Patient, input.BookingFor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// ApplyCoupon handles POST /api/checkout/coupon.
func (h *CheckoutHandler) ApplyCoupon(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	state, err := h.WizardSvc.ApplyCoupon(c.Request.Context(), middleware.UserKey(c), input.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// ClearCoupon handles DELETE /api/checkout/coupon.
func (h *CheckoutHandler) ClearCoupon(c *gin.Context) {
	state, err := h.WizardSvc.ClearCoupon(c.Request.Context(), middleware.UserKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// GetLabs handles GET /api/checkout/labs.
func (h *CheckoutHandler) GetLabs(c *gin.Context) {
	labs, err := h.WizardSvc.Labs(c.Request.Context(), middleware.UserKey(c))
	if err != nil {
		h.Logger.Error("GetLabs: matching failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labs": labs})
}

// GetUnavailableSlots handles GET /api/checkout/slots?lab=...&date=...
func (h *CheckoutHandler) GetUnavailableSlots(c *gin.Context) {
	labName := c.Query("lab")
	date := c.Query("date")
	if labName == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lab and date query parameters are required"})
		return
	}

	times, err := h.WizardSvc.UnavailableTimes(c.Request.Context(), labName, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unavailable": times})
}

// SelectSchedule handles POST /api/checkout/schedule. On success the slot is
// held exclusively for this identity until confirmation or TTL expiry.
func (h *CheckoutHandler) SelectSchedule(c *gin.Context) {
	var input models.ScheduleSelection
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	state, lock, err := h.WizardSvc.SelectSchedule(c.Request.Context(), middleware.UserKey(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state": state,
		"lock":  lock,
	})
}

// QuoteOrder handles GET /api/checkout/quote?lab=...
func (h *CheckoutHandler) QuoteOrder(c *gin.Context) {
	labName := c.Query("lab")
	if labName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lab query parameter is required"})
		return
	}

	quote, err := h.WizardSvc.QuoteOrder(c.Request.Context(), middleware.UserKey(c), labName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// ConfirmBooking handles POST /api/checkout/confirm.
func (h *CheckoutHandler) ConfirmBooking(c *gin.Context) {
	var input models.ScheduleSelection
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	booking, err := h.WizardSvc.Confirm(c.Request.Context(), middleware.UserKey(c), input)
	if err != nil {
		h.Logger.Warn("ConfirmBooking: failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CancelCheckout handles DELETE /api/checkout/session. The optional body
// carries the current slot selection so the held lock is released rather
// than left to expire.
func (h *CheckoutHandler) CancelCheckout(c *gin.Context) {
	var input models.ScheduleSelection
	var sel *models.ScheduleSelection
	if err := c.ShouldBindJSON(&input); err == nil && input.LabName != "" {
		sel = &input
	}

	if err := h.WizardSvc.Cancel(c.Request.Context(), middleware.UserKey(c), sel); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
