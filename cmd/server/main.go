package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hirehi-monitor/internal/api/hirehi"
	"hirehi-monitor/internal/cache"
	"hirehi-monitor/internal/config"
	"hirehi-monitor/internal/logger"
	"hirehi-monitor/internal/repository"
	"hirehi-monitor/internal/scheduler"
	"hirehi-monitor/internal/server"
	"hirehi-monitor/internal/storage/postgres"
	"hirehi-monitor/internal/storage/redis"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting hirehi monitor",
		zap.String("log_level", cfg.LogLevel),
		zap.String("listen_addr", cfg.ListenAddr),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	var store *postgres.Store
	if cfg.PostgresDSN != "" {
		log.Info("connecting to PostgreSQL...")
		store, err = postgres.New(cfg.PostgresDSN, log)
		if err != nil {
			log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
		}
		defer store.Close()
		log.Info("PostgreSQL connected successfully")
	} else {
		log.Warn("POSTGRES_DSN not set, archive endpoints disabled")
	}

	var limiter *redis.Cache
	if cfg.RedisAddr != "" {
		log.Info("connecting to Redis...")
		limiter, err = redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer limiter.Close()
		log.Info("Redis connected successfully")
	} else {
		log.Info("REDIS_ADDR not set, rate limiting disabled")
	}

	client := hirehi.New(cfg.HireHiBaseURL, cfg.HireHiTimeout, log)
	scraper := hirehi.NewScraper(client, cfg.PageLimit, cfg.MaxPages, cfg.PageDelay, log)
	fileCache := cache.New(cfg.CacheFile, cfg.CacheTTL, log)
	repo := repository.New(scraper, fileCache, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if cfg.RefreshInterval > 0 {
		refresher := scheduler.New(repo, cfg.SearchParams(), cfg.RefreshInterval, log)
		go func() {
			if err := refresher.Start(ctx); err != nil {
				log.Error("refresher stopped with error", zap.Error(err))
			}
		}()
	}

	var archive server.ArchiveStore
	if store != nil {
		archive = store
	}

	srv := server.New(repo, archive, cfg.SearchParams(), limiter, cfg.MaxRequestsPerMinute, log)

	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
		if err := srv.Shutdown(10 * time.Second); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Listen(cfg.ListenAddr); err != nil {
		log.Error("server stopped with error", zap.Error(err))
	}

	log.Info("shutting down gracefully...")
	log.Info("server stopped")
}
