// Package main provides a CLI for running one discovery pass from the
// command line, against either the real store or an in-memory one.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/airdrop-scanner/internal/adapter"
	"github.com/airdrop-scanner/internal/config"
	"github.com/airdrop-scanner/internal/logging"
	"github.com/airdrop-scanner/internal/service"
	"github.com/airdrop-scanner/internal/storage"
	"github.com/airdrop-scanner/internal/types"
)

func main() {
	var (
		sources = flag.String("sources", "", "Comma-separated source subset (github,rss,social,forum,search); empty = all")
		limit   = flag.Int("limit", 0, "Per-adapter item limit; 0 = configured default")
		dryRun  = flag.Bool("dry-run", false, "Use an in-memory store and print results instead of persisting")
		timeout = flag.Duration("timeout", 10*time.Minute, "Overall run deadline")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(logging.ParseLogLevel(cfg.Logging.Level), logging.ParseLogFormat(cfg.Logging.Format))
	logger := logging.GetGlobalLogger()

	var store storage.AirdropStore
	var runLog service.RunLog
	var runCache service.RunCache

	if *dryRun {
		store = storage.NewMemoryStore()
	} else {
		postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Postgres")
		}
		defer postgres.Close()
		store = storage.NewAirdropRepository(postgres)

		clickhouse, err := storage.NewClickHouseDB(&cfg.Database.ClickHouse)
		if err != nil {
			logger.WithError(err).Warn("ClickHouse unavailable; run will not be logged")
		} else {
			defer clickhouse.Close()
			if err := clickhouse.EnsureDiscoveryLogSchema(context.Background()); err != nil {
				logger.WithError(err).Warn("Failed to ensure discovery log schema")
			} else {
				runLog = storage.NewDiscoveryLogRepository(clickhouse)
			}
		}

		redis, err := storage.NewRedisCache(&cfg.Database.Redis)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable; run summary will not be cached")
		} else {
			defer redis.Close()
			runCache = storage.NewCacheService(redis, cfg.Scraper.CacheTTL)
		}
	}

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
	if len(cfg.Sources.SocialHandles) > 0 && cfg.Sources.SocialBearer != "" {
		adapters = append(adapters, adapter.NewSocialAdapter(cfg.Sources.SocialHandles, cfg.Sources.SocialBearer, pacing))
	}
	if len(cfg.Sources.ForumCommunities) > 0 {
		adapters = append(adapters, adapter.NewForumAdapter(cfg.Sources.ForumCommunities, pacing))
	}
	if len(cfg.Sources.SearchQueries) > 0 && cfg.Sources.SearchAPIKey != "" {
		adapters = append(adapters, adapter.NewSearchAdapter(cfg.Sources.SearchQueries, cfg.Sources.SearchAPIKey, pacing))
	}

	enrichClient := adapter.NewEnrichClient(cfg.External.EnrichURL, cfg.External.EnrichKey)

	discovery := service.NewDiscoveryService(
		adapters,
		service.NewMergeService(),
		store,
		enrichClient,
		runLog,
		runCache,
		cfg.Scraper.MinConfidence,
		cfg.Scraper.Interval,
	)

	runLimit := *limit
	if runLimit <= 0 {
		runLimit = cfg.Scraper.DefaultLimit
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	summary, err := discovery.Run(ctx, service.RunOptions{
		Sources: parseSources(*sources),
		Limit:   runLimit,
	})
	if err != nil {
		logger.WithError(err).Fatal("Discovery run failed")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		logger.WithError(err).Fatal("Failed to print run summary")
	}

	if *dryRun {
		airdrops, err := store.List(ctx, nil)
		if err != nil {
			logger.WithError(err).Fatal("Failed to list discovered airdrops")
		}
		if err := encoder.Encode(airdrops); err != nil {
			logger.WithError(err).Fatal("Failed to print discovered airdrops")
		}
	}
}

func parseSources(raw string) []types.SourceType {
	if raw == "" {
		return nil
	}
	var out []types.SourceType
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, types.SourceType(part))
		}
	}
	return out
}
