package routes

import (
	"net/http"
	"time"

	"labcart/handlers"
	"labcart/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCartRoutes registers cart endpoints.
func RegisterCartRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/cart")
	{
		api.GET("", hb.GetCart)
		api.POST("", hb.AddCartItem)
		api.DELETE("/:itemId", hb.RemoveCartItem)
	}
}

// RegisterCheckoutRoutes sets up the endpoints for the checkout wizard.
func RegisterCheckoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/checkout")
	{
		api.POST("/session", hb.StartCheckout)
		api.DELETE("/session", hb.CancelCheckout)
		api.POST("/begin", hb.BeginCheckout)
		api.PUT("/patient-details", hb.SubmitPatientDetails)
		api.POST("/coupon", hb.ApplyCoupon)
		api.DELETE("/coupon", hb.ClearCoupon)
		api.GET("/labs", hb.GetLabs)
		api.GET("/slots", hb.GetUnavailableSlots)
		api.POST("/schedule", hb.SelectSchedule)
		api.GET("/quote", hb.QuoteOrder)
		api.POST("/confirm", hb.ConfirmBooking)
	}
}

// RegisterBookingRoutes sets up the endpoints for committed bookings.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.GET("", hb.ListBookings)
		api.GET("/:bookingId", hb.GetBooking)
		api.POST("/:bookingId/cancel", hb.CancelBooking)
		api.POST("/:bookingId/reschedule", hb.RescheduleBooking)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "labcart is up"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Device-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Every checkout endpoint works for guests as well as signed-in users,
	// so identity resolution runs globally instead of per-group auth.
	r.Use(middleware.IdentityMiddleware())

	RegisterHealthRoute(r)
	RegisterCartRoutes(r, hb)
	RegisterCheckoutRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
}
