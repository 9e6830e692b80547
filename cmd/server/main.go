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

	integrationapp "github.com/logida/backend/internal/application/integration"
	"github.com/logida/backend/internal/infrastructure/auth"
	"github.com/logida/backend/internal/infrastructure/cache"
	"github.com/logida/backend/internal/infrastructure/config"
	"github.com/logida/backend/internal/infrastructure/logger"
	"github.com/logida/backend/internal/infrastructure/persistence"
	"github.com/logida/backend/internal/infrastructure/shopify"
	"github.com/logida/backend/internal/interfaces/http/handler"
	"github.com/logida/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting logida backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()

	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	integrationRepo := persistence.NewGormIntegrationRepository(db.DB)
	mappingRepo := persistence.NewGormShippingMethodMappingRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	carrierRepo := persistence.NewGormCarrierRepository(db.DB)
	salesOrderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	salesReturnRepo := persistence.NewGormSalesReturnRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)

	// Shopify gateway and application services
	shopifyClient := shopify.NewClient(cfg.Shopify, cfg.App.BaseURL, log)

	importer := integrationapp.NewImporter(
		productRepo,
		customerRepo,
		warehouseRepo,
		salesOrderRepo,
		salesReturnRepo,
		mappingRepo,
		persistence.IsUniqueViolation,
		log,
	)
	connectService := integrationapp.NewConnectService(
		integrationRepo,
		mappingRepo,
		shopifyClient,
		cfg.Shopify.ClientSecret,
		shopifyClient.WebhookAddress(),
		cfg.Shopify.FulfillmentLocationName,
		log,
	)
	webhookService := integrationapp.NewWebhookService(
		integrationRepo,
		importer,
		idempotencyStore,
		cfg.Shopify.WebhookDedupTTL,
		log,
	)
	syncService := integrationapp.NewSyncService(
		integrationRepo,
		productRepo,
		salesOrderRepo,
		inventoryRepo,
		carrierRepo,
		importer,
		shopifyClient,
		cfg.Shopify.MaxPages,
		cfg.Shopify.FulfillmentLocationName,
		log,
	)

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.New(router.Config{
		HTTP:       cfg.HTTP,
		JWTService: jwtService,
		Logger:     log,
	})
	r.Register(
		handler.NewShopifyHandler(connectService, syncService, cfg.App.FrontendURL, log),
		handler.NewShopifyWebhookHandler(webhookService, cfg.Shopify.ClientSecret, log),
	)
	handler.NewSystemHandler(db.DB).RegisterRoutes(r.Engine())

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        r.Engine(),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited gracefully")
}
