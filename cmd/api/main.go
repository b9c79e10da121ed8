package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/pageza/recipegen/backend/config"
	"github.com/pageza/recipegen/backend/internal/api"
	"github.com/pageza/recipegen/backend/internal/database"
	"github.com/pageza/recipegen/backend/internal/logger"
	"github.com/pageza/recipegen/backend/internal/metrics"
	"github.com/pageza/recipegen/backend/internal/middleware"
	"github.com/pageza/recipegen/backend/internal/server"
	"github.com/pageza/recipegen/backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		// logger may not exist yet
		_, _ = os.Stderr.WriteString("recipegen: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDevelopment(),
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, log); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	genOpts := []service.GeneratorOption{
		service.WithHTTPClient(&http.Client{}),
		service.WithMetrics(m),
	}
	if cfg.PayloadArchiveBucket != "" {
		store, err := config.NewS3Config(ctx, cfg.PayloadArchiveBucket, cfg.AWSRegion)
		if err != nil {
			return err
		}
		genOpts = append(genOpts, service.WithArchiver(service.NewS3PayloadArchiver(store)))
		log.Info("payload archive enabled", zap.String("bucket", cfg.PayloadArchiveBucket))
	}

	deps := api.Dependencies{
		DB: db,
		Generator: service.NewGeneratorService(service.GeneratorConfig{
			WebhookURL:         cfg.WebhookURL,
			Timeout:            cfg.WebhookTimeout,
			MaxBodyBytes:       cfg.WebhookMaxBodyBytes,
			RateLimitEnabled:   cfg.RateLimitEnabled(),
			SessionAuthEnabled: cfg.SessionAuthEnabled(),
		}, log, genOpts...),
		Recipes:  service.NewRecipeService(db, m, log),
		Metrics:  m,
		Gatherer: reg,
		Logger:   log,
	}

	if cfg.SessionAuthEnabled() {
		deps.Sessions = service.NewSessionService(cfg.SessionJWTSecret)
		log.Info("session auth enabled")
	}

	if cfg.RateLimitEnabled() {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()

		deps.Limiter = middleware.NewGenerationRateLimiter(redisClient, cfg.GenerateRateLimit, cfg.GenerateRateWindow)
		log.Info("generation rate limit enabled",
			zap.Int("limit", cfg.GenerateRateLimit),
			zap.Duration("window", cfg.GenerateRateWindow),
		)
	}

	srv := server.New(cfg, deps)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
