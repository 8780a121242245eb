package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/shopsync/backend/internal/application/identity"
	ingestionapp "github.com/shopsync/backend/internal/application/ingestion"
	"github.com/shopsync/backend/internal/infrastructure/auth"
	"github.com/shopsync/backend/internal/infrastructure/cache"
	"github.com/shopsync/backend/internal/infrastructure/config"
	"github.com/shopsync/backend/internal/infrastructure/logger"
	"github.com/shopsync/backend/internal/infrastructure/persistence"
	"github.com/shopsync/backend/internal/infrastructure/scheduler"
	"github.com/shopsync/backend/internal/infrastructure/shopify"
	"github.com/shopsync/backend/internal/interfaces/http/handler"
	"github.com/shopsync/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ShopSync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run schema migration", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Per-tenant sync lease: Redis when reachable, in-memory otherwise.
	// A multi-replica deployment must set sync.require_redis.
	leaseFactory := cache.NewSyncLeaseFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Sync.RequireRedis),
	)
	lease, err := leaseFactory.CreateLease()
	if err != nil {
		log.Fatal("Failed to create sync lease", zap.Error(err))
	}

	// Shopify Admin API client, shared across tenants so the rate limiter
	// bounds the whole process
	gateway, err := shopify.NewClient(shopify.Config{
		APIVersion:     cfg.Shopify.APIVersion,
		RequestTimeout: cfg.Shopify.RequestTimeout,
		PageSize:       cfg.Shopify.PageSize,
		RatePerSecond:  cfg.Shopify.RatePerSecond,
		RateBurst:      cfg.Shopify.RateBurst,
	})
	if err != nil {
		log.Fatal("Failed to create Shopify client", zap.Error(err))
	}

	// Application services
	reconcilers := []ingestionapp.Reconciler{
		ingestionapp.NewCustomerReconciler(gateway, customerRepo, log),
		ingestionapp.NewProductReconciler(gateway, productRepo, log),
		ingestionapp.NewOrderReconciler(gateway, orderRepo, log),
	}
	orchestrator := ingestionapp.NewOrchestrator(tenantRepo, gateway, lease, cfg.Sync.LeaseTTL, reconcilers, log)
	tenantService := identityapp.NewTenantService(tenantRepo, gateway)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiration)

	// Fleet scheduler (if enabled)
	if cfg.Sync.Enabled {
		fleetScheduler, err := scheduler.NewFleetScheduler(scheduler.FleetSchedulerConfig{
			Interval:     cfg.Sync.Interval,
			StartupDelay: cfg.Sync.StartupDelay,
			TenantPacing: cfg.Sync.TenantPacing,
		}, tenantRepo, orchestrator, log)
		if err != nil {
			log.Fatal("Failed to create fleet scheduler", zap.Error(err))
		}
		if err := fleetScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start fleet scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := fleetScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping fleet scheduler", zap.Error(err))
			}
		}()
	}

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	router.Setup(engine, router.Dependencies{
		Logger:        log,
		JWTService:    jwtService,
		TenantHandler: handler.NewTenantHandler(tenantService, jwtService),
		SyncHandler:   handler.NewSyncHandler(orchestrator),
		Webhooks:      handler.NewWebhookHandler(log),
		DB:            db,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: engine,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
