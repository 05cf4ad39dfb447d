// Package worker provides the background discovery scheduler.
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/service"
)

// DiscoveryRunner is the orchestrator contract the worker drives.
type DiscoveryRunner interface {
	Run(ctx context.Context, opts service.RunOptions) (*models.RunSummary, error)
}

// DiscoveryWorker triggers full discovery runs on a fixed cadence. One run
// at a time; a trigger arriving while a run is in flight is dropped rather
// than queued, since the next scheduled run covers the same sources anyway.
type DiscoveryWorker struct {
	discovery DiscoveryRunner
	interval  time.Duration
	limit     int

	running bool
	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	kickCh  chan struct{}
}

// DiscoveryWorkerConfig holds configuration for the discovery worker
type DiscoveryWorkerConfig struct {
	Discovery DiscoveryRunner
	Interval  time.Duration // default: 6 hours
	Limit     int           // per-adapter item limit per run
}

// NewDiscoveryWorker creates a new discovery worker
func NewDiscoveryWorker(cfg *DiscoveryWorkerConfig) (*DiscoveryWorker, error) {
	if cfg.Discovery == nil {
		return nil, fmt.Errorf("discovery service cannot be nil")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if interval < time.Minute {
		return nil, fmt.Errorf("discovery interval must be at least one minute, got %v", interval)
	}

	return &DiscoveryWorker{
		discovery: cfg.Discovery,
		interval:  interval,
		limit:     cfg.Limit,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		kickCh:    make(chan struct{}, 1),
	}, nil
}

// Start begins the scheduler loop. The first run fires immediately so a
// fresh deployment has data before the first interval elapses.
func (w *DiscoveryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("discovery worker is already running")
	}
	w.running = true
	w.mu.Unlock()

	log.Printf("[DiscoveryWorker] Starting with interval %v", w.interval)

	go w.loop(ctx)
	return nil
}

// Stop signals the worker to stop and waits for the loop to exit.
func (w *DiscoveryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	log.Printf("[DiscoveryWorker] Stopped")
}

// Kick requests an immediate run without waiting for the next tick.
// Returns false if a kick is already pending.
func (w *DiscoveryWorker) Kick() bool {
	select {
	case w.kickCh <- struct{}{}:
		return true
	default:
		return false
	}
}

// IsRunning reports whether the scheduler loop is active.
func (w *DiscoveryWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *DiscoveryWorker) loop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		case <-w.kickCh:
			w.runOnce(ctx)
		}
	}
}

func (w *DiscoveryWorker) runOnce(ctx context.Context) {
	start := time.Now()
	summary, err := w.discovery.Run(ctx, service.RunOptions{Limit: w.limit})
	if err != nil {
		log.Printf("[DiscoveryWorker] Run failed after %v: %v", time.Since(start), err)
		return
	}
	log.Printf("[DiscoveryWorker] Run %s finished in %v: discovered=%d new=%d updated=%d errors=%d",
		summary.RunID, time.Since(start), summary.Discovered, summary.New, summary.Updated, len(summary.Errors))
}
