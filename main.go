// File: labcart/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labcart/config"
	"labcart/cron"
	"labcart/database"
	bookingRepoPkg "labcart/database/repository/booking"
	catalogRepoPkg "labcart/database/repository/catalog"
	couponRepoPkg "labcart/database/repository/coupon"
	"labcart/handlers"
	"labcart/middleware"
	"labcart/routes"
	"labcart/services/checkout"
	"labcart/services/slotlock"
	"labcart/services/tasks"
	"labcart/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	catalogRepo := catalogRepoPkg.NewMongoCatalogRepo()
	couponRepo := couponRepoPkg.NewMongoCouponRepo()

	if err := bookingRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}

	// slot lock manager. The memory backend exists for single-node and
	// development setups; redis is the default.
	lockTTL := time.Duration(config.AppConfig.SlotLockTTLMinutes) * time.Minute
	var lockManager slotlock.Manager
	if config.AppConfig.SlotLockBackend == "memory" {
		lockManager = slotlock.NewMemoryManager(lockTTL)
	} else {
		lockManager = slotlock.NewRedisManager(utils.GetSlotLockClient(), lockTTL)
	}

	// services.
	eventPublisher := &checkout.RedisPublisher{
		Client: utils.GetCacheClient(),
	}
	cartService := &checkout.DefaultCartService{
		Client:  utils.GetCacheClient(),
		Catalog: catalogRepo,
		Events:  eventPublisher,
	}
	matchingService := &checkout.DefaultMatchingService{
		Catalog: catalogRepo,
	}
	discountEngine := &checkout.DefaultDiscountEngine{
		Coupons: couponRepo,
	}
	idGenerator := &checkout.IdentifierGenerator{
		Rand: checkout.DefaultRandomSource(),
		Repo: bookingRepo,
	}
	stateStore := &checkout.RedisStateStore{
		Client: utils.GetWizardCacheClient(),
		TTL:    time.Duration(config.AppConfig.WizardStateTTLHours) * time.Hour,
	}
	confirmationEnqueuer := tasks.NewEnqueuer()

	wizardService := &checkout.DefaultWizardService{
		CartSvc:     cartService,
		MatchingSvc: matchingService,
		Locks:       lockManager,
		Discounts:   discountEngine,
		IDs:         idGenerator,
		CatalogRepo: catalogRepo,
		States:      stateStore,
		StateTTL:    time.Duration(config.AppConfig.WizardStateTTLHours) * time.Hour,
		Events:      eventPublisher,
		Tasks:       confirmationEnqueuer,
	}
	bookingService := &checkout.DefaultBookingService{
		Repo:  bookingRepo,
		Locks: lockManager,
	}

	cartHandler := handlers.NewCartHandler(cartService, logger)
	checkoutHandler := handlers.NewCheckoutHandler(wizardService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Cart endpoints.
		GetCart:        cartHandler.GetCart,
		AddCartItem:    cartHandler.AddCartItem,
		RemoveCartItem: cartHandler.RemoveCartItem,

		// Checkout wizard endpoints.
		StartCheckout:        checkoutHandler.StartCheckout,
		BeginCheckout:        checkoutHandler.BeginCheckout,
		SubmitPatientDetails: checkoutHandler.SubmitPatientDetails,
		ApplyCoupon:          checkoutHandler.ApplyCoupon,
		ClearCoupon:          checkoutHandler.ClearCoupon,
		GetLabs:              checkoutHandler.GetLabs,
		GetUnavailableSlots:  checkoutHandler.GetUnavailableSlots,
		SelectSchedule:       checkoutHandler.SelectSchedule,
		QuoteOrder:           checkoutHandler.QuoteOrder,
		ConfirmBooking:       checkoutHandler.ConfirmBooking,
		CancelCheckout:       checkoutHandler.CancelCheckout,

		// Committed booking endpoints.
		ListBookings:      bookingHandler.ListBookings,
		GetBooking:        bookingHandler.GetBooking,
		CancelBooking:     bookingHandler.CancelBooking,
		RescheduleBooking: bookingHandler.RescheduleBooking,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the confirmation worker.
	cron.InitConfirmationWorker()

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
