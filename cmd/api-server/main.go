// cmd/api-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sei-core/internal/airtable"
	"sei-core/internal/common/config"
	"sei-core/internal/common/database"
	"sei-core/internal/common/logger"
	"sei-core/internal/common/observability"
	"sei-core/internal/intake"
	"sei-core/internal/intake/dedupe"
	"sei-core/internal/intake/ratelimit"
	"sei-core/internal/notify"
	"sei-core/internal/profiles"
	"sei-core/internal/search"
	"sei-core/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting api-server...",
		zap.String("env", cfg.App.Environment),
		zap.String("listenAddr", cfg.Server.ListenAddr),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Rate-limit and dedupe backends ---
	// Redis is optional: without an address the service falls back to
	// in-process stores, which only hold for single-instance deployments.
	dedupeWindow := time.Duration(cfg.Dedupe.WindowHours) * time.Hour
	limiter := ratelimit.Limiter(ratelimit.NewMemoryLimiter())
	dedupeStore := dedupe.Store(dedupe.NewMemoryStore(dedupeWindow))

	if cfg.Redis.Address != "" {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")

		limiter = ratelimit.NewRedisLimiter(redisClient)
		dedupeStore = dedupe.NewRedisStore(redisClient, dedupeWindow)
	} else {
		zapLog.Warn("redis not configured, using in-process rate limiting and dedupe")
	}

	// --- Backing store ---
	store := airtable.NewStore(cfg.Airtable, log)
	if !store.Configured() {
		zapLog.Warn("store credentials missing, reads degrade to empty and writes are rejected")
	}

	// --- Services ---
	profileSvc := profiles.NewService(store, config.GetDuration(cfg.Cache.TTLSeconds*1000), log)
	searchSvc := search.NewService(store, log)

	intakeCfg := intake.Config{
		AgentKeys:     cfg.Agent.KeyList(),
		PublicLimit:   cfg.RateLimits.PublicLimit,
		PublicWindow:  time.Duration(cfg.RateLimits.PublicWindowSec) * time.Second,
		KeyLimit:      cfg.RateLimits.KeyLimit,
		KeyWindow:     time.Duration(cfg.RateLimits.KeyWindowSec) * time.Second,
		CompanyLimit:  cfg.RateLimits.CompanyLimit,
		CompanyWindow: time.Duration(cfg.RateLimits.CompanyWindowSec) * time.Second,
	}
	if err := intakeCfg.Validate(); err != nil {
		zapLog.Fatal("invalid intake configuration", zap.Error(err))
	}

	var notifier intake.Notifier
	emailNotifier, err := notify.NewEmailNotifier(ctx, cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("email notifier init failed", zap.Error(err))
	}
	if emailNotifier != nil {
		notifier = emailNotifier
		zapLog.Info("write-failure email notifications enabled")
	}

	intakeSvc := intake.NewService(store, limiter, dedupeStore, intakeCfg, notifier, log)

	srv := server.New(server.Deps{
		Intake:           intakeSvc,
		Profiles:         profileSvc,
		Search:           searchSvc,
		Observability:    obs,
		Logger:           log,
		SiteBaseURL:      cfg.Site.BaseURL,
		RevalidateSecret: cfg.Revalidate.Secret,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.RequestTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.RequestTimeout),
		IdleTimeout:  2 * config.GetDuration(cfg.Server.RequestTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("api-server stopped gracefully")
}
