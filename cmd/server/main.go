package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apppricing "github.com/arbicart/backend/internal/application/pricing"
	"github.com/arbicart/backend/internal/infrastructure/cache"
	"github.com/arbicart/backend/internal/infrastructure/config"
	"github.com/arbicart/backend/internal/infrastructure/dataset"
	"github.com/arbicart/backend/internal/infrastructure/ecommerce"
	"github.com/arbicart/backend/internal/infrastructure/logger"
	"github.com/arbicart/backend/internal/infrastructure/mockprice"
	"github.com/arbicart/backend/internal/infrastructure/telemetry"
	"github.com/arbicart/backend/internal/interfaces/http/handler"
	"github.com/arbicart/backend/internal/interfaces/http/middleware"
	"github.com/arbicart/backend/internal/interfaces/http/router"
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

	log.Info("Starting price API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = logsProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	meter := meterProvider.Meter("arbicart/pricing")

	priceMetrics, err := telemetry.NewPriceMetrics(meter)
	if err != nil {
		log.Warn("Price metrics disabled", zap.Error(err))
		priceMetrics = telemetry.NewNoopPriceMetrics()
	}

	// Response cache: Redis when configured, memory otherwise
	responseCache, err := cache.NewResponseCacheFactory(cfg.Cache, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize price cache", zap.Error(err))
	}
	if closer, ok := responseCache.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Error("Error closing price cache", zap.Error(err))
			}
		}()
	}

	// Pre-scraped dataset, if enabled
	datasetStore, err := dataset.NewStore(ctx, cfg.Dataset, log)
	if err != nil {
		log.Fatal("Failed to initialize dataset store", zap.Error(err))
	}

	opts := []apppricing.ServiceOption{
		apppricing.WithProviders(ecommerce.NewProviders(cfg.Providers, log)...),
		apppricing.WithMetrics(priceMetrics),
		apppricing.WithLogger(log),
	}
	if datasetStore != nil {
		opts = append(opts, apppricing.WithDataset(datasetStore))
	}
	priceService := apppricing.NewPriceService(apppricing.ServiceConfig{
		DefaultZip:      cfg.Pricing.DefaultZip,
		MaxItems:        cfg.Pricing.MaxItems,
		ComparisonZips:  cfg.Pricing.ComparisonZips,
		ComparisonLimit: cfg.Pricing.ComparisonLimit,
		MockTTL:         cfg.Cache.MockTTL,
		LiveTTL:         cfg.Cache.LiveTTL,
	}, mockprice.NewModel(), responseCache, opts...)

	log.Info("Price source selected",
		zap.String("source", priceService.Mode().String()),
		zap.String("cache", responseCache.Backend()),
	)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(meter, log))
	}
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig()))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(corsCfg))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	var priceGuards []gin.HandlerFunc
	if cfg.HTTP.PriceRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.PriceRateLimit, cfg.HTTP.PriceRateWindow)
		defer limiter.Stop()
		priceGuards = append(priceGuards, middleware.RateLimit(limiter))
	}

	r := router.NewRouter(engine, router.WithStaticDir(cfg.HTTP.StaticDir))
	r.Register(router.NewPriceAPI(
		handler.NewPriceHandler(priceService),
		handler.NewSystemHandler(priceService, responseCache.Backend()),
		priceGuards...,
	))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing logs", zap.Error(err))
	}
}
