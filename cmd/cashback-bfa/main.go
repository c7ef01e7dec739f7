package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rockstar-cards/cashback-bfa-go/internal/config"
	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
	"github.com/rockstar-cards/cashback-bfa-go/internal/generator"
	"github.com/rockstar-cards/cashback-bfa-go/internal/handler"
	"github.com/rockstar-cards/cashback-bfa-go/internal/i18n"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/cache"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/client"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/notify"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/observability"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/resilience"
	"github.com/rockstar-cards/cashback-bfa-go/internal/port"
	"github.com/rockstar-cards/cashback-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("cashback_data_api_url", cfg.CashbackDataAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "cashback-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Localization & notifications ---
	translator := i18n.New()
	translator.SetLanguage(i18n.Language(cfg.DefaultLanguage))
	notifier := notify.New(translator, metrics, logger)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("cashback-data-api")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	dataClient := client.NewDataClient(httpClient, cfg.CashbackDataAPIURL, cb, resilienceCfg, metrics, logger)

	// --- Transaction source ---
	newSource := func() port.TransactionSource {
		if cfg.GeneratorSeed != 0 {
			return generator.New(generator.WithSeed(cfg.GeneratorSeed))
		}
		return generator.New()
	}

	// --- Services ---
	txnSvc := service.NewTransactionsService(
		newSource(),
		cache.New[domain.TransactionPage](cfg.CacheTTL),
		cache.New[[]domain.Purchase](cfg.CacheTTL),
		metrics,
		logger,
	)

	sessions := service.NewSessionManager(
		dataClient,
		newSource,
		notifier,
		metrics,
		logger,
		cfg.SessionTTL,
		cfg.CacheTTL,
		cfg.MaxConcurrency,
	)

	// --- Router ---
	router := handler.NewRouter(txnSvc, dataClient, sessions, translator, metrics, logger, cfg.AllowedOrigins)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
