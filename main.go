// Package main provides the main entry point for the commission engine API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inmoventa/commission-engine/app/handlers"
	"github.com/inmoventa/commission-engine/app/middleware"
	"github.com/inmoventa/commission-engine/app/router"
	"github.com/inmoventa/commission-engine/app/services"
	businessflow "github.com/inmoventa/commission-engine/business_flow"
	"github.com/inmoventa/commission-engine/config"
	"github.com/inmoventa/commission-engine/repository"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting commission engine...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging directs log output to stdout, a rotated file, or both
func setupLogging(cfg config.LoggingConfig) {
	switch cfg.Output {
	case "file", "both":
		rotated := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		if cfg.Output == "both" {
			log.SetOutput(io.MultiWriter(os.Stdout, rotated))
		} else {
			log.SetOutput(rotated)
		}
	default:
		log.SetOutput(os.Stdout)
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, 30*time.Second)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	saleRepo := repository.NewCommissionSaleRepository(db)
	configRepo := repository.NewCommissionConfigRepository(db)
	globalRepo := repository.NewGlobalConfigRepository(db)
	ruleRepo := repository.NewCommissionRuleRepository(db)
	distRepo := repository.NewCommissionDistributionRepository(db)
	adjustmentRepo := repository.NewCommissionAdjustmentRepository(db)
	productPartnerRepo := repository.NewProductPartnerRepository(db)
	partnerCommissionRepo := repository.NewPartnerCommissionRepository(db)
	partnerInvoiceRepo := repository.NewPartnerInvoiceRepository(db)
	hiddenPartnerRepo := repository.NewHiddenPartnerRepository(db)
	billingTargetRepo := repository.NewBillingTargetRepository(db)
	salesTargetRepo := repository.NewSalesTargetRepository(db)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize CRM client
	crmClient := services.NewHTTPCRMClient(cfg.CRM.BaseURL, cfg.CRM.APIToken, cfg.CRM.Timeout)

	// Initialize flows
	authFlow := businessflow.NewAuthFlow(tokenService, cfg.Admin, cfg.JWT)

	configFlow := businessflow.NewConfigFlow(
		configRepo,
		globalRepo,
		rc,
		&cfg.Cache,
	)

	ruleFlow := businessflow.NewRuleFlow(ruleRepo, saleRepo)

	syncFlow := businessflow.NewSyncFlow(
		crmClient,
		saleRepo,
		productPartnerRepo,
	)

	distributionFlow := businessflow.NewDistributionFlow(
		saleRepo,
		configRepo,
		globalRepo,
		ruleRepo,
		distRepo,
		db,
	)

	partnerFlow := businessflow.NewPartnerFlow(
		saleRepo,
		productPartnerRepo,
		partnerCommissionRepo,
		partnerInvoiceRepo,
		hiddenPartnerRepo,
		cfg.Engine,
		db,
	)

	adjustmentFlow := businessflow.NewAdjustmentFlow(
		saleRepo,
		distRepo,
		adjustmentRepo,
		db,
	)

	reportFlow := businessflow.NewReportFlow(
		saleRepo,
		billingTargetRepo,
		salesTargetRepo,
	)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(cfg, router.Handlers{
		Auth:         handlers.NewAuthHandler(authFlow),
		Config:       handlers.NewConfigHandler(configFlow),
		Rule:         handlers.NewRuleHandler(ruleFlow),
		Sync:         handlers.NewSyncHandler(syncFlow),
		Distribution: handlers.NewDistributionHandler(distributionFlow),
		Partner:      handlers.NewPartnerHandler(partnerFlow),
		Adjustment:   handlers.NewAdjustmentHandler(adjustmentFlow),
		Report:       handlers.NewReportHandler(reportFlow),
	}, authMiddleware)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
