package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stride/internal/api"
	"stride/internal/cache"
	"stride/internal/config"
	"stride/internal/database"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/services/storefront"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel, cfg.Env)
	defer logger.Sync()

	// Initialize database
	db, err := database.New(cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Storefront API client, cached through Redis when configured
	client := storefront.NewClient(cfg.StoreDomain, cfg.StorefrontToken, cfg.StorefrontAPIVersion, logger)
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, serving without cache: %v", err)
		} else {
			defer rc.Close()
			client.WithCache(rc, cfg.CacheTTL)
		}
	}

	// Storefront events
	var publisher events.Publisher = events.Noop{}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers, cfg.KafkaTopic, logger)
	}
	defer publisher.Close()

	// Initialize API server
	server := api.New(cfg, logger, db, client, publisher)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
