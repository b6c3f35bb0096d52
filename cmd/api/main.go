package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adelante-org/impact-api/internal/config"
	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/server"
	"github.com/adelante-org/impact-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Initialize(logLevel)
	log := logger.Get()

	log.Info("Starting Impact API", "gin_mode", cfg.Server.GinMode)

	db, err := postgres.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	if err := postgres.AutoMigrate(db); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	srv := server.New(cfg, db)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}

	if err := postgres.Close(); err != nil {
		log.Error("Failed to close database connection", "error", err)
	}

	log.Info("Impact API stopped")
}
