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

	catalogapp "github.com/retailops/backend/internal/application/catalog"
	replapp "github.com/retailops/backend/internal/application/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/infrastructure/cache"
	"github.com/retailops/backend/internal/infrastructure/config"
	"github.com/retailops/backend/internal/infrastructure/logger"
	"github.com/retailops/backend/internal/infrastructure/persistence"
	"github.com/retailops/backend/internal/interfaces/http/handler"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
	"github.com/retailops/backend/internal/interfaces/http/router"
)

const appVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting retailops backend",
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
	log.Info("database connected")

	// Receive idempotency store. Redis is preferred; fall back to the
	// in-memory store so a missing Redis never blocks receiving.
	var idempotencyStore shared.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("redis unavailable, using in-memory idempotency store", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	} else {
		idempotencyStore = redisStore
		log.Info("redis idempotency store connected", zap.String("addr", cfg.Redis.Addr()))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	catalogService := catalogapp.NewCatalogService(productRepo, categoryRepo, supplierRepo)
	batchService := replapp.NewBatchService(batchRepo, supplierRepo, txScope)
	receivingService := replapp.NewReceivingService(batchRepo, txScope, idempotencyStore, log)
	receivingService.SetIdempotencyTTL(cfg.Receive.IdempotencyTTL)

	// HTTP handlers
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	replenishmentHandler := handler.NewReplenishmentHandler(batchService, receivingService, log)
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name, appVersion)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check outside API versioning for load balancers
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	catalogRoutes := router.NewDomainGroup("/catalog")
	catalogRoutes.POST("/products", catalogHandler.CreateProduct)
	catalogRoutes.GET("/products", catalogHandler.ListProducts)
	catalogRoutes.GET("/products/:id", catalogHandler.GetProduct)
	catalogRoutes.POST("/categories", catalogHandler.CreateCategory)
	catalogRoutes.GET("/categories", catalogHandler.ListCategories)
	catalogRoutes.POST("/suppliers", catalogHandler.CreateSupplier)
	catalogRoutes.GET("/suppliers", catalogHandler.ListSuppliers)
	catalogRoutes.GET("/suppliers/:id", catalogHandler.GetSupplier)

	replenishmentRoutes := router.NewDomainGroup("/replenishment")
	replenishmentRoutes.POST("/batches", replenishmentHandler.CreateBatch)
	replenishmentRoutes.GET("/batches", replenishmentHandler.ListBatches)
	replenishmentRoutes.GET("/batches/:id", replenishmentHandler.GetBatch)
	replenishmentRoutes.POST("/batches/:id/cancel", replenishmentHandler.CancelBatch)
	replenishmentRoutes.GET("/items/open", replenishmentHandler.ListOpenItems)
	replenishmentRoutes.POST("/items/:id/receive", replenishmentHandler.ReceiveItem)
	replenishmentRoutes.PATCH("/items/:id", replenishmentHandler.UpdateItem)
	replenishmentRoutes.POST("/items/:id/cancel", replenishmentHandler.CancelItem)

	systemRoutes := router.NewDomainGroup("/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(catalogRoutes).
		Register(replenishmentRoutes).
		Register(systemRoutes)
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
