package main

import (
	"context"
	"os"

	"github.com/pageza/recipegen/backend/config"
	"github.com/pageza/recipegen/backend/internal/database"
	"github.com/pageza/recipegen/backend/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		_, _ = os.Stderr.WriteString("migrate: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Development: cfg.IsDevelopment()})
	defer func() { _ = log.Sync() }()

	db, err := database.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	log.Info("all migrations applied successfully")
}
