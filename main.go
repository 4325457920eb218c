package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liljb23/promotrack/internal/config"
	"github.com/liljb23/promotrack/internal/database"
	"github.com/liljb23/promotrack/internal/docstore"
	"github.com/liljb23/promotrack/internal/httpserver"
	"github.com/liljb23/promotrack/internal/metrics"
	"github.com/liljb23/promotrack/internal/middleware"
	"github.com/liljb23/promotrack/internal/models"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Can't use logger yet, fall back to panic
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	logger, err := middleware.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("starting Promotrack",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
		zap.String("store", cfg.Store.Backend),
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the document store backend
	store, health, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize document store", zap.Error(err))
	}
	defer cleanup()

	m := metrics.NewMetrics("promotrack")

	// Build dependencies
	deps := &httpserver.Dependencies{
		Store:       store,
		Config:      cfg,
		Logger:      logger,
		StoreHealth: health,
		Metrics:     m,
	}

	// Create HTTP server and start the event dispatch workers
	server := httpserver.NewServer(deps)
	server.Start(ctx)

	// Apply middleware chain (order matters: outermost first)
	// Recovery -> Logging -> RateLimit -> Auth -> Handler
	recoveryMW := middleware.NewRecoveryMiddleware(logger)
	loggingMW := middleware.NewLoggingMiddleware(logger)
	rateLimitMW := middleware.NewRateLimitMiddleware(cfg.RateLimit, logger, m)
	authMW := middleware.NewAuthMiddleware(cfg.Auth, logger)

	finalHandler := recoveryMW.Handler(
		loggingMW.Handler(
			rateLimitMW.Handler(
				authMW.Handler(server),
			),
		),
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           finalHandler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Drain queued attribution events before exiting
	server.Close()

	// Cancel main context to stop background goroutines
	cancel()

	logger.Info("server stopped")
}

// buildStore constructs the configured document store backend. It also
// returns the backend's health probe (nil for memory) and a cleanup function
// closing the underlying connections.
func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (docstore.Store, func(context.Context) error, func(), error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		store := docstore.NewPostgresStore(db.Pool)
		if err := store.InitSchema(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return store, db.Health, db.Close, nil

	case config.StoreRedis:
		rdb, err := database.NewRedisDB(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		store := docstore.NewRedisStore(rdb.Client, models.StoreIndexes)
		return store, rdb.Health, func() { rdb.Close() }, nil

	default:
		if cfg.IsProduction() {
			logger.Warn("in-memory document store in production, data will not survive restarts")
		} else {
			logger.Info("using in-memory document store")
		}
		return docstore.NewMemoryStore(), nil, func() {}, nil
	}
}
