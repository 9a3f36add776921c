package main

import (
	"context"
	"devicelog/config"
	"devicelog/database"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	conn, err := pgx.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect", zap.Error(err))
	}
	defer conn.Close(ctx)

	err = database.ApplyMigrations(ctx, conn, func(name string) {
		logger.Info("migration applied", zap.String("file", name))
	})
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	logger.Info("all migrations completed")
}
