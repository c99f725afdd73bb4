package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	billingapp "github.com/shulesync/backend/internal/application/billing"
	hostelapp "github.com/shulesync/backend/internal/application/hostel"
	libraryapp "github.com/shulesync/backend/internal/application/library"
	studentapp "github.com/shulesync/backend/internal/application/student"
	transportapp "github.com/shulesync/backend/internal/application/transport"
	"github.com/shulesync/backend/internal/infrastructure/cache"
	"github.com/shulesync/backend/internal/infrastructure/config"
	"github.com/shulesync/backend/internal/infrastructure/event"
	"github.com/shulesync/backend/internal/infrastructure/logger"
	"github.com/shulesync/backend/internal/infrastructure/notify"
	"github.com/shulesync/backend/internal/infrastructure/persistence"
	"github.com/shulesync/backend/internal/interfaces/http/handler"
	"github.com/shulesync/backend/internal/interfaces/http/middleware"
	"github.com/shulesync/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ShuleSync Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	feeCatalogRepo := persistence.NewGormFeeCatalogRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	syncFailureRepo := persistence.NewGormSyncFailureRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	yearRepo := persistence.NewGormAcademicYearRepository(db.DB)
	termRepo := persistence.NewGormTermRepository(db.DB)
	hostelRepo := persistence.NewGormHostelRepository(db.DB)
	hostelAllocationRepo := persistence.NewGormHostelAllocationRepository(db.DB)
	transportRepo := persistence.NewGormTransportRepository(db.DB)
	transportAllocationRepo := persistence.NewGormTransportAllocationRepository(db.DB)
	libraryFineRepo := persistence.NewGormLibraryFineRepository(db.DB)

	periodResolver := persistence.NewRepositoryPeriodResolver(yearRepo, termRepo)

	// Dashboard cache: redis when configured, in-memory otherwise
	statsCache := cache.NewStatsCache(cfg.Redis, log)
	defer func() {
		if err := statsCache.Close(); err != nil {
			log.Error("Error closing stats cache", zap.Error(err))
		}
	}()

	// Initialize event bus; handler failures land in the sync failure table
	// for the reconciliation sweep rather than aborting the triggering write
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.SetFailureSink(billingapp.NewSyncFailureRecorder(syncFailureRepo, log))

	// Initialize application services
	provisioner := billingapp.NewInvoiceProvisioner(feeCatalogRepo)
	billingService := billingapp.NewBillingService(
		invoiceRepo, periodResolver, eventBus, statsCache, cfg.Billing.DashboardCacheTTL, log)
	feeSyncService := billingapp.NewFeeSyncService(
		invoiceRepo, studentRepo, hostelRepo, transportRepo, libraryFineRepo,
		periodResolver, provisioner, eventBus, log)
	batchService := billingapp.NewBatchInvoiceService(
		invoiceRepo, studentRepo, periodResolver, provisioner, eventBus, cfg.Billing.PaymentDueDays, log)
	reconciliationService := billingapp.NewReconciliationService(
		invoiceRepo, hostelRepo, hostelAllocationRepo, transportAllocationRepo,
		syncFailureRepo, feeSyncService, log)
	reminderService := billingapp.NewReminderService(
		invoiceRepo, studentRepo, notify.NewLogNotifier(log), cfg.Worker.ReminderPoolSize, log)
	feeCatalogService := billingapp.NewFeeCatalogService(feeCatalogRepo, log)
	expenseService := billingapp.NewExpenseService(expenseRepo, log)
	allocationService := hostelapp.NewAllocationService(hostelRepo, studentRepo, eventBus, log)
	hostelService := hostelapp.NewHostelService(hostelRepo, eventBus, log)
	transportService := transportapp.NewTransportService(
		transportRepo, transportAllocationRepo, studentRepo, eventBus, log)
	fineService := libraryapp.NewFineService(libraryFineRepo, studentRepo, eventBus, log)
	studentService := studentapp.NewStudentService(studentRepo, eventBus, log)

	// Register event handlers for cross-module fee synchronization
	eventBus.Subscribe(billingapp.NewHostelAllocationHandler(feeSyncService))
	eventBus.Subscribe(billingapp.NewTransportAllocationHandler(feeSyncService))
	eventBus.Subscribe(billingapp.NewLibraryFineHandler(feeSyncService))
	eventBus.Subscribe(billingapp.NewStudentCreatedHandler(feeSyncService))
	eventBus.Subscribe(billingapp.NewInvoicePaidHandler(feeSyncService))
	eventBus.Subscribe(billingapp.NewExpenseMirror(expenseRepo, hostelRepo, transportRepo, log))
	eventBus.Subscribe(hostelapp.NewStudentChangeHandler(allocationService, log))

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// backgroundCtx bounds the async sweeps kicked off by HTTP handlers;
	// cancelled on shutdown so they stop with the server
	backgroundCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	// Initialize HTTP handlers
	billingHandler := handler.NewBillingHandler(
		billingService, batchService, reconciliationService, reminderService, backgroundCtx, log)
	feeStructureHandler := handler.NewFeeStructureHandler(feeCatalogService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	hostelHandler := handler.NewHostelHandler(hostelService, allocationService)
	transportHandler := handler.NewTransportHandler(transportService)
	libraryHandler := handler.NewLibraryHandler(fineService)
	studentHandler := handler.NewStudentHandler(studentService)
	healthHandler := handler.NewHealthHandler(db.DB)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(healthHandler).
		Register(billingHandler).
		Register(feeStructureHandler).
		Register(expenseHandler).
		Register(hostelHandler).
		Register(transportHandler).
		Register(libraryHandler).
		Register(studentHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	cancelBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
