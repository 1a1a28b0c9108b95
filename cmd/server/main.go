package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appcart "github.com/clynova/cantabria-cart/internal/application/cart"
	appcheckout "github.com/clynova/cantabria-cart/internal/application/checkout"
	appevent "github.com/clynova/cantabria-cart/internal/application/event"
	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/infrastructure/auth"
	"github.com/clynova/cantabria-cart/internal/infrastructure/cache"
	"github.com/clynova/cantabria-cart/internal/infrastructure/config"
	"github.com/clynova/cantabria-cart/internal/infrastructure/event"
	"github.com/clynova/cantabria-cart/internal/infrastructure/gateway"
	"github.com/clynova/cantabria-cart/internal/infrastructure/logger"
	"github.com/clynova/cantabria-cart/internal/infrastructure/persistence"
	"github.com/clynova/cantabria-cart/internal/interfaces/http/handler"
	"github.com/clynova/cantabria-cart/internal/interfaces/http/middleware"
	"github.com/clynova/cantabria-cart/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting cart service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Redis backs the reconcile guard and the snapshot cache. When it is
	// unreachable the in-process fallbacks take over.
	var redisClient *redis.Client
	{
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unavailable, using in-process guard and cache", zap.Error(err))
			_ = client.Close()
		} else {
			redisClient = client
			defer redisClient.Close()
			log.Info("Redis connected")
		}
		cancel()
	}

	// Backend collaborators
	remoteCart, err := gateway.NewCartAPIClient(cfg.Gateway.CartAPIBaseURL, cfg.Gateway.Timeout)
	if err != nil {
		log.Fatal("Failed to create cart API client", zap.Error(err))
	}
	catalog, err := gateway.NewCatalogClient(cfg.Gateway.CatalogBaseURL, cfg.Gateway.Timeout)
	if err != nil {
		log.Fatal("Failed to create catalog client", zap.Error(err))
	}
	shippingMethods, err := gateway.NewShippingMethodClient(cfg.Gateway.ShippingBaseURL, cfg.Gateway.Timeout)
	if err != nil {
		log.Fatal("Failed to create shipping method client", zap.Error(err))
	}
	paymentMethods, err := gateway.NewPaymentMethodClient(cfg.Gateway.PaymentBaseURL, cfg.Gateway.Timeout)
	if err != nil {
		log.Fatal("Failed to create payment method client", zap.Error(err))
	}

	var snapshots cart.SnapshotProvider
	var guard appcart.ReconcileGuard
	if redisClient != nil {
		snapshots = cache.NewRedisSnapshotProvider(catalog, redisClient, cfg.Cart.SnapshotTTL, log)
		guard = cache.NewRedisReconcileGuard(redisClient, cfg.Cart.ReconcileGuardTTL)
	} else {
		snapshots = cache.NewCachingSnapshotProvider(catalog, cfg.Cart.SnapshotTTL)
		guard = cache.NewInMemoryReconcileGuard(cfg.Cart.ReconcileGuardTTL)
	}

	cartRepo := persistence.NewGormCartRepository(db.DB)

	// Application services
	cartService := appcart.NewCartService(cartRepo, snapshots, remoteCart, log)
	quantityService := appcart.NewQuantityService(cartRepo, snapshots, remoteCart, cfg.Cart.MutationDebounce, log)
	syncService := appcart.NewSyncService(cartRepo, remoteCart, snapshots, guard, log)
	checkoutService := appcheckout.NewCheckoutService(cartRepo, remoteCart, shippingMethods, paymentMethods, log)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(appevent.NewCartActivityHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	cartService.SetEventPublisher(eventBus)
	syncService.SetEventPublisher(eventBus)
	checkoutService.SetEventPublisher(eventBus)

	sessions := auth.NewSessionService(cfg.JWT)

	// HTTP stack
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.BodySizeLimit(1 << 20))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.SessionAuthMiddleware(sessions))

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	r := router.NewRouter(engine)
	r.Register(handler.NewSessionHandler(sessions, cartService, syncService)).
		Register(handler.NewCartHandler(cartService, quantityService, syncService)).
		Register(handler.NewCheckoutHandler(checkoutService))
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
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Event bus shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
