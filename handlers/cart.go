package handlers

import (
	"net/http"

	"labcart/middleware"
	"labcart/services/checkout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartHandler exposes the cart endpoints.
type CartHandler struct {
	CartSvc checkout.CartService
	Logger  *zap.Logger
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(cartSvc checkout.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{CartSvc: cartSvc, Logger: logger}
}

// GetCart handles GET /api/cart.
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.CartSvc.Get(c.Request.Context(), middleware.UserKey(c))
	if err != nil {
		h.Logger.Error("GetCart: failed to fetch cart", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddCartItem handles POST /api/cart.
func (h *CartHandler) AddCartItem(c *gin.Context) {
	var input struct {
		TestID string `json:"testId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	cart, err := h.CartSvc.AddItem(c.Request.Context(), middleware.UserKey(c), input.TestID)
	if err != nil {
		h.Logger.Error("AddCartItem: failed to add item",
			zap.String("testId", input.TestID), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveCartItem handles DELETE /api/cart/:itemId.
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	itemID := c.Param("itemId")
	cart, err := h.CartSvc.RemoveItem(c.Request.Context(), middleware.UserKey(c), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
