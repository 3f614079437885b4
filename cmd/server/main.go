package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retro-games-platform/internal/auth"
	"github.com/retro-games-platform/internal/config"
	"github.com/retro-games-platform/internal/handler"
	"github.com/retro-games-platform/internal/kafka"
	"github.com/retro-games-platform/internal/postgres"
	"github.com/retro-games-platform/internal/redis"
	"github.com/retro-games-platform/internal/service"
	"github.com/retro-games-platform/internal/websocket"
	"github.com/retro-games-platform/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL, the system of record
	logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	repo, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to PostgreSQL")

	// Run database migrations
	if err := repo.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize Redis leaderboard cache. The platform stays up without it;
	// leaderboard reads fall back to SQL.
	logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
	cache, err := redis.New(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("failed to connect to Redis, serving leaderboards from PostgreSQL only", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		logger.Info("connected to Redis")
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	// Initialize services
	catalog := service.NewCatalogService(repo, logger)
	accounts := service.NewAccountService(repo, repo, cfg.Auth.BcryptCost, logger)
	saves := service.NewSaveService(repo, logger)
	stats := service.NewStatsService(repo, repo, repo, logger)

	var scoreCache service.ScoreCache
	if cache != nil {
		scoreCache = cache
	}
	scores := service.NewScoreService(repo, repo, scoreCache, &cfg.Leaderboard, logger)
	scores.SetHub(wsHub)

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret not configured, using a random per-boot key; issued tokens will not survive restarts")
	}
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Seed the game catalog and admin account
	if err := catalog.SeedDefaults(ctx, cfg.Seed.Games); err != nil {
		logger.Error("failed to seed games", "error", err)
		os.Exit(1)
	}
	if err := accounts.EnsureAdmin(ctx, cfg.Seed.Admin.Username, cfg.Seed.Admin.Email, cfg.Seed.Admin.Password); err != nil {
		logger.Error("failed to ensure admin account", "error", err)
		os.Exit(1)
	}

	// Initialize the cache rebuild worker
	var syncWorker *worker.SyncWorker
	if cache != nil {
		syncWorker = worker.NewSyncWorker(cache, repo, &cfg.Sync, logger)

		// Rebuild caches from the database on startup (recovery)
		logger.Info("rebuilding leaderboard caches from database")
		if err := syncWorker.SyncAll(ctx); err != nil {
			logger.Warn("failed to rebuild caches on startup", "error", err)
		}

		if cfg.Sync.Enabled {
			if err := syncWorker.Start(ctx); err != nil {
				logger.Error("failed to start sync worker", "error", err)
				os.Exit(1)
			}
		}
	}

	// Initialize Kafka consumer for high-load score ingestion
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		var err error
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, scores, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else {
			if err := kafkaConsumer.Start(); err != nil {
				logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
				kafkaConsumer = nil
			} else {
				logger.Info("Kafka consumer started successfully")
			}
		}
	}

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(catalog, accounts, scores, saves, stats, tokens, wsHub, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		logger.Info("WebSocket endpoint available at /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop WebSocket hub
	wsHub.Stop()

	// Stop Kafka consumer
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	// Stop sync worker
	if syncWorker != nil {
		if err := syncWorker.Stop(); err != nil {
			logger.Error("failed to stop sync worker", "error", err)
		}
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
