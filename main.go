package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medirouter/config"
	croner "medirouter/cron"
	"medirouter/database"
	slotRepo "medirouter/database/repository/slot"
	"medirouter/datasets"
	"medirouter/handlers"
	"medirouter/middleware"
	"medirouter/routes"
	"medirouter/services/compare"
	"medirouter/services/ledger"
	routersvc "medirouter/services/router"
	"medirouter/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitRedis()

	// Slot persistence: Mongo in deployment, in-memory when running
	// without a database (DATABASE_URL=memory).
	var repo slotRepo.SlotRepository
	if config.AppConfig.DatabaseURL == "memory" {
		repo = slotRepo.NewMemorySlotRepo()
		logger.Warn("using in-memory slot store; bookings will not survive restarts")
	} else {
		database.InitDB()
		mongoRepo := slotRepo.NewMongoSlotRepo()
		if err := mongoRepo.EnsureIndexes(); err != nil {
			logger.Sugar().Fatalf("main: failed to create slot indexes: %v", err)
		}
		repo = mongoRepo
	}

	// Data gateway over the CSV datasets.
	gateway := datasets.NewCSVStore(config.AppConfig.DataDir)

	// Booking ledger, seeded from the doctor schedule dataset.
	bookingLedger := ledger.NewDefaultLedger(repo, config.HoldTTL(), config.AppConfig.OverrideCanceler)
	if records, err := gateway.Fetch(datasets.KindSchedule, nil); err != nil {
		logger.Warn("schedule dataset unavailable; booking starts with an empty ledger", zap.Error(err))
	} else {
		slots, warnings := datasets.DecodeSlots(records)
		for _, w := range warnings {
			logger.Warn("schedule row skipped", zap.String("reason", w))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := bookingLedger.LoadSlots(ctx, slots); err != nil {
			logger.Sugar().Fatalf("main: failed to seed slots: %v", err)
		}
		cancel()
		logger.Info("ledger seeded", zap.Int("slots", len(slots)))
	}

	// Intent classifier: Gemini when a key is configured, keyword
	// matching otherwise. Both honor the same priority order.
	var classifier routersvc.Classifier
	if config.AppConfig.GeminiAPIKey != "" {
		gc, err := routersvc.NewGeminiClassifier(config.AppConfig.GeminiAPIKey, config.AppConfig.RouterFallback)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize Gemini classifier: %v", err)
		}
		classifier = gc
	} else {
		classifier = &routersvc.KeywordClassifier{Fallback: config.AppConfig.RouterFallback}
	}

	ctxStore := routersvc.NewRedisContextStore(utils.GetContextCacheClient(), 30*time.Minute)
	queryRouter := &routersvc.DefaultRouter{
		Gateway:    gateway,
		Engine:     compare.NewEngine(),
		Ledger:     bookingLedger,
		Classifier: classifier,
		CtxStore:   ctxStore,
		Cache:      utils.GetCacheClient(),
	}

	queryHandler := handlers.NewQueryHandler(queryRouter)
	bookingHandler := handlers.NewBookingHandler(bookingLedger)
	datasetHandler := handlers.NewDatasetHandler(gateway, repo)

	handlerBundle := &handlers.HandlerBundle{
		HandleQuery: queryHandler.HandleQuery,

		HoldHandler:    bookingHandler.HoldHandler,
		ConfirmHandler: bookingHandler.ConfirmHandler,
		CancelHandler:  bookingHandler.CancelHandler,

		ListHospitalsHandler:  datasetHandler.ListHospitalsHandler,
		GetDiagnosticsHandler: datasetHandler.GetDiagnosticsHandler,
		GetEmergencyHandler:   datasetHandler.GetEmergencyHandler,
		GetDoctorSlotsHandler: datasetHandler.GetDoctorSlotsHandler,
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	routes.RegisterRoutes(router, handlerBundle)

	// Background sweep of expired holds.
	sweeper := croner.InitHoldSweeper(bookingLedger)

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

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
