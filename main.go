package main

import (
	"context"
	"devicelog/config"
	"devicelog/database"
	"devicelog/handlers"
	"devicelog/memstore"
	"devicelog/reports"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// backend is satisfied by both the Postgres and the in-memory store.
type backend interface {
	handlers.Store
	reports.LogStore
	Close()
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	opts, err := reportOptions(cfg.Reports)
	if err != nil {
		logger.Fatal("invalid reports config", zap.Error(err))
	}

	svc := reports.NewService(store, store, opts, logger.Named("reports"))
	h := handlers.NewHandler(store, svc, logger.Named("http"))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      h.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.ReadTimeout * 2,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.HTTPPort),
			zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

func openStore(cfg *config.Config, logger *zap.Logger) (backend, error) {
	if cfg.Storage.Driver == "memory" {
		logger.Warn("using in-memory storage; data is lost on restart")
		return memstore.New(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return database.Connect(ctx, cfg.Database, logger.Named("database"))
}

func reportOptions(cfg config.ReportsConfig) (reports.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return reports.Options{}, err
	}
	policy, err := reports.ParseConflictPolicy(cfg.ConflictPolicy)
	if err != nil {
		return reports.Options{}, err
	}

	return reports.Options{
		MaxPageSize:      cfg.MaxPageSize,
		MaxDays:          cfg.MaxDays,
		Location:         loc,
		ConflictPolicy:   policy,
		ErrorReportLimit: cfg.ErrorReportLimit,
		DayConcurrency:   cfg.DayConcurrency,
	}, nil
}
