// Package main provides the API server entry point for the airdrop scanner service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airdrop-scanner/internal/adapter"
	"github.com/airdrop-scanner/internal/api"
	"github.com/airdrop-scanner/internal/config"
	"github.com/airdrop-scanner/internal/logging"
	"github.com/airdrop-scanner/internal/service"
	"github.com/airdrop-scanner/internal/storage"
	"github.com/airdrop-scanner/internal/worker"
)

func main() {
	fmt.Println("Airdrop Scanner API Server")
	log.Println("Server starting...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Initialize database connections
	logger.Info("Connecting to databases...")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	clickhouse, err := storage.NewClickHouseDB(&cfg.Database.ClickHouse)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to ClickHouse")
	}
	defer clickhouse.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	if err := clickhouse.EnsureDiscoveryLogSchema(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to ensure discovery log schema")
	}

	// Initialize repositories and caches
	airdropRepo := storage.NewAirdropRepository(postgres)
	discoveryLogRepo := storage.NewDiscoveryLogRepository(clickhouse)
	cacheService := storage.NewCacheService(redis, cfg.Scraper.CacheTTL)

	// Initialize source adapters
	logger.Info("Initializing source adapters...")
	adapters := buildAdapters(cfg)
	logger.WithField("count", len(adapters)).Info("Source adapters initialized")

	// External collaborators
	enrichClient := adapter.NewEnrichClient(cfg.External.EnrichURL, cfg.External.EnrichKey)
	scannerClient := adapter.NewScannerClient(cfg.External.ScannerURL)

	// Initialize services
	logger.Info("Initializing services...")

	mergeService := service.NewMergeService()
	discoveryService := service.NewDiscoveryService(
		adapters,
		mergeService,
		airdropRepo,
		enrichClient,
		discoveryLogRepo,
		cacheService,
		cfg.Scraper.MinConfidence,
		cfg.Scraper.Interval,
	)
	airdropService := service.NewAirdropService(airdropRepo, cacheService)
	eligibilityService := service.NewEligibilityService()

	logger.Info("Services initialized")

	// Start the background discovery scheduler
	discoveryWorker, err := worker.NewDiscoveryWorker(&worker.DiscoveryWorkerConfig{
		Discovery: discoveryService,
		Interval:  cfg.Scraper.Interval,
		Limit:     cfg.Scraper.DefaultLimit,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create discovery worker")
	}
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if err := discoveryWorker.Start(workerCtx); err != nil {
		logger.WithError(err).Fatal("Failed to start discovery worker")
	}

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		AdminToken:      cfg.Auth.AdminToken,
		RateLimitRPS:    cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:  cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, airdropService, discoveryService, eligibilityService, scannerClient)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	discoveryWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// buildAdapters wires every source with configured targets.
func buildAdapters(cfg *config.Config) []adapter.SourceAdapter {
	logger := logging.GetGlobalLogger()
	pacing := adapter.Pacing{
		BatchSize:      cfg.Scraper.BatchSize,
		BatchDelay:     cfg.Scraper.BatchDelay,
		RequestTimeout: cfg.Scraper.RequestTimeout,
	}

	var adapters []adapter.SourceAdapter
	if len(cfg.Sources.GitHubRepos) > 0 {
		adapters = append(adapters, adapter.NewGitHubAdapter(cfg.Sources.GitHubRepos, cfg.Sources.GitHubToken, pacing))
	}
	if len(cfg.Sources.RSSFeeds) > 0 {
		adapters = append(adapters, adapter.NewRSSAdapter(cfg.Sources.RSSFeeds, pacing))
	}
	if len(cfg.Sources.SocialHandles) > 0 {
		if cfg.Sources.SocialBearer == "" {
			logger.Warn("Social adapter configured without bearer token; its runs will fail fast")
		}
		adapters = append(adapters, adapter.NewSocialAdapter(cfg.Sources.SocialHandles, cfg.Sources.SocialBearer, pacing))
	}
	if len(cfg.Sources.ForumCommunities) > 0 {
		adapters = append(adapters, adapter.NewForumAdapter(cfg.Sources.ForumCommunities, pacing))
	}
	if len(cfg.Sources.SearchQueries) > 0 && cfg.Sources.SearchAPIKey != "" {
		adapters = append(adapters, adapter.NewSearchAdapter(cfg.Sources.SearchQueries, cfg.Sources.SearchAPIKey, pacing))
	}
	return adapters
}
