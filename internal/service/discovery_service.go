package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/airdrop-scanner/internal/adapter"
	"github.com/airdrop-scanner/internal/logging"
	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/storage"
	"github.com/airdrop-scanner/internal/types"
)

// RunLog records completed discovery runs and serves run history.
// Satisfied by the ClickHouse repository; nil disables logging.
type RunLog interface {
	RecordRun(ctx context.Context, summary *models.RunSummary) error
	RecentRuns(ctx context.Context, limit int) ([]storage.DiscoveryRunRow, error)
}

// RunCache holds the last run summary for the status endpoint. Satisfied by
// the Redis-backed cache service; nil disables caching.
type RunCache interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	InvalidateLists(ctx context.Context) error
}

const lastRunCacheKey = "lastrun"

// DiscoveryService orchestrates the source adapters: concurrent fan-out,
// wait-all, confidence filtering, merge and persistence. A failing adapter
// never fails the run.
type DiscoveryService struct {
	adapters      []adapter.SourceAdapter
	merge         *MergeService
	store         storage.AirdropStore
	enrich        *adapter.EnrichClient
	runLog        RunLog
	runCache      RunCache
	minConfidence float64
	interval      time.Duration

	mu      sync.RWMutex
	lastRun *models.RunSummary
}

// NewDiscoveryService creates a discovery orchestrator over the given
// adapters. enrich, runLog and runCache are optional.
func NewDiscoveryService(
	adapters []adapter.SourceAdapter,
	merge *MergeService,
	store storage.AirdropStore,
	enrich *adapter.EnrichClient,
	runLog RunLog,
	runCache RunCache,
	minConfidence float64,
	interval time.Duration,
) *DiscoveryService {
	if minConfidence <= 0 {
		minConfidence = 0.5
	}
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &DiscoveryService{
		adapters:      adapters,
		merge:         merge,
		store:         store,
		enrich:        enrich,
		runLog:        runLog,
		runCache:      runCache,
		minConfidence: minConfidence,
		interval:      interval,
	}
}

// RunOptions selects which adapters participate and caps per-adapter output.
// A zero MinConfidence falls back to the configured default.
type RunOptions struct {
	Sources       []types.SourceType // empty = all configured adapters
	Limit         int
	Chains        []types.ChainID
	MinConfidence float64
}

// Run executes one full discovery pass: fan out over adapters, wait for
// all, filter by confidence, reconcile against the store and persist.
func (s *DiscoveryService) Run(ctx context.Context, opts RunOptions) (*models.RunSummary, error) {
	logger := logging.FromContext(ctx).WithField("component", "discovery")
	summary := &models.RunSummary{
		RunID:        uuid.New().String(),
		StartedAt:    time.Now(),
		SourceCounts: make(map[types.SourceType]int),
	}

	selected := s.selectAdapters(opts.Sources)
	if len(selected) == 0 {
		summary.FinishedAt = time.Now()
		return summary, fmt.Errorf("no adapters matched the requested sources")
	}
	logger.WithField("runId", summary.RunID).Infof("Starting discovery run with %d adapters", len(selected))

	results := make([]*models.DiscoveryResult, len(selected))
	var wg sync.WaitGroup
	for i, a := range selected {
		wg.Add(1)
		go func(idx int, a adapter.SourceAdapter) {
			defer wg.Done()
			// An adapter panic is converted into an empty failed result so
			// the other adapters still complete.
			defer func() {
				if r := recover(); r != nil {
					results[idx] = &models.DiscoveryResult{
						Source: a.Source(),
						Errors: []string{fmt.Sprintf("%s adapter panicked: %v", a.Source(), r)},
					}
				}
			}()
			results[idx] = a.Fetch(ctx, adapter.FetchOptions{
				Limit:       opts.Limit,
				ChainFilter: opts.Chains,
			})
		}(i, a)
	}
	wg.Wait()

	minConfidence := s.minConfidence
	if opts.MinConfidence > 0 {
		minConfidence = opts.MinConfidence
	}

	var candidates []models.ScoredCandidate
	for _, result := range results {
		if result == nil {
			continue
		}
		summary.Errors = append(summary.Errors, result.Errors...)
		kept := 0
		for _, c := range result.Airdrops {
			if c.Confidence() < minConfidence {
				continue
			}
			candidates = append(candidates, c)
			kept++
		}
		summary.SourceCounts[result.Source] = kept
	}
	summary.Discovered = len(candidates)

	if s.enrich != nil && s.enrich.Configured() {
		s.enrichCandidates(ctx, candidates)
	}

	existing, err := s.store.List(ctx, nil)
	if err != nil {
		summary.FinishedAt = time.Now()
		return summary, fmt.Errorf("failed to load existing airdrops: %w", err)
	}

	reconciled := s.merge.Reconcile(candidates, existing)
	summary.New = len(reconciled.New)
	summary.Updated = len(reconciled.Updated)

	for _, a := range append(reconciled.New, reconciled.Updated...) {
		if err := s.store.Upsert(ctx, a); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("failed to persist %s: %v", a.ID, err))
		}
	}

	summary.FinishedAt = time.Now()
	s.finishRun(ctx, summary)

	logger.WithFields(map[string]interface{}{
		"runId":      summary.RunID,
		"discovered": summary.Discovered,
		"new":        summary.New,
		"updated":    summary.Updated,
		"errors":     len(summary.Errors),
	}).Info("Discovery run finished")
	return summary, nil
}

// LastRun returns the most recent run summary, first from memory, then
// from the cache. ok is false when no run has completed yet.
func (s *DiscoveryService) LastRun(ctx context.Context) (*models.RunSummary, bool) {
	s.mu.RLock()
	last := s.lastRun
	s.mu.RUnlock()
	if last != nil {
		return last, true
	}

	if s.runCache != nil {
		var cached models.RunSummary
		if found, err := s.runCache.Get(ctx, lastRunCacheKey, &cached); err == nil && found {
			return &cached, true
		}
	}
	return nil, false
}

// RunHistory returns recent per-source run rows from the run log, newest
// first. Without a run log it returns an empty history.
func (s *DiscoveryService) RunHistory(ctx context.Context, limit int) ([]storage.DiscoveryRunRow, error) {
	if s.runLog == nil {
		return nil, nil
	}
	return s.runLog.RecentRuns(ctx, limit)
}

// NextScheduledRun derives the next run time from the fixed cadence.
func (s *DiscoveryService) NextScheduledRun(ctx context.Context) time.Time {
	if last, ok := s.LastRun(ctx); ok {
		return last.FinishedAt.Add(s.interval)
	}
	return time.Now().Add(s.interval)
}

// Interval returns the configured run cadence.
func (s *DiscoveryService) Interval() time.Duration {
	return s.interval
}

func (s *DiscoveryService) selectAdapters(sources []types.SourceType) []adapter.SourceAdapter {
	if len(sources) == 0 {
		return s.adapters
	}
	wanted := make(map[types.SourceType]bool, len(sources))
	for _, src := range sources {
		wanted[src] = true
	}
	var out []adapter.SourceAdapter
	for _, a := range s.adapters {
		if wanted[a.Source()] {
			out = append(out, a)
		}
	}
	return out
}

// enrichCandidates refines names and descriptions through the external
// extraction service. Enrichment failures are ignored; the scraped fields
// are already good enough to persist.
func (s *DiscoveryService) enrichCandidates(ctx context.Context, candidates []models.ScoredCandidate) {
	logger := logging.FromContext(ctx).WithField("component", "discovery")
	for i := range candidates {
		c := &candidates[i]
		enriched, err := s.enrich.Enrich(ctx, c.Name+"\n"+c.Description)
		if err != nil {
			logger.WithError(err).Debugf("Enrichment skipped for %s", c.Name)
			continue
		}
		if enriched.Name != "" {
			c.Name = enriched.Name
		}
		if c.Symbol == "" && enriched.Symbol != "" {
			c.Symbol = enriched.Symbol
		}
		if enriched.Description != "" {
			c.Description = enriched.Description
		}
		if c.Website == "" && enriched.Website != "" {
			c.Website = enriched.Website
		}
		if c.TwitterURL == "" && enriched.TwitterURL != "" {
			c.TwitterURL = enriched.TwitterURL
		}
		if len(enriched.Categories) > 0 {
			c.Categories = enriched.Categories
		}
		if !enriched.IsOngoing && c.Status == types.StatusLive {
			c.Status = types.StatusEnded
		}
	}
}

func (s *DiscoveryService) finishRun(ctx context.Context, summary *models.RunSummary) {
	s.mu.Lock()
	s.lastRun = summary
	s.mu.Unlock()

	logger := logging.FromContext(ctx).WithField("component", "discovery")
	if s.runLog != nil {
		if err := s.runLog.RecordRun(ctx, summary); err != nil {
			logger.WithError(err).Warn("Failed to record discovery run")
		}
	}
	if s.runCache != nil {
		if err := s.runCache.SetWithTTL(ctx, lastRunCacheKey, summary, s.interval); err != nil {
			logger.WithError(err).Warn("Failed to cache run summary")
		}
		if err := s.runCache.InvalidateLists(ctx); err != nil {
			logger.WithError(err).Warn("Failed to invalidate list cache")
		}
	}
}
