package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"simpletodos/config"
	"simpletodos/pkg/db"
	"simpletodos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", zap.Error(err))
	}
	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, log); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Migrations applied")
}
