// Package adapter provides the source adapters that fetch raw items from
// external surfaces and emit scored airdrop candidates.
package adapter

import (
	"context"
	"strings"
	"time"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/types"
)

// SourceAdapter is the common contract every source implements. Fetch never
// returns an error: per-target failures are collected inside the result so
// one unreachable target cannot abort a run.
type SourceAdapter interface {
	Source() types.SourceType
	Fetch(ctx context.Context, opts FetchOptions) *models.DiscoveryResult
}

// FetchOptions narrows one adapter run.
type FetchOptions struct {
	Limit       int
	ChainFilter []types.ChainID
}

// chainAllowed reports whether a chain passes the caller's filter. An empty
// filter allows everything.
func (o FetchOptions) chainAllowed(chain types.ChainID) bool {
	if len(o.ChainFilter) == 0 {
		return true
	}
	for _, c := range o.ChainFilter {
		if c == chain {
			return true
		}
	}
	return false
}

// chainsAllowed reports whether any detected chain passes the filter. With
// a filter set, an item whose text names no recognized chain is dropped.
func (o FetchOptions) chainsAllowed(chains []types.ChainID) bool {
	if len(o.ChainFilter) == 0 {
		return true
	}
	for _, c := range chains {
		if o.chainAllowed(c) {
			return true
		}
	}
	return false
}

// Pacing groups the per-adapter rate discipline: targets are partitioned
// into fixed-size batches, each batch fans out concurrently, and the next
// batch waits out BatchDelay. RequestsPerSecond feeds the token bucket
// shared by all requests of the adapter.
type Pacing struct {
	BatchSize         int
	BatchDelay        time.Duration
	RequestTimeout    time.Duration
	RequestsPerSecond float64
}

// forEachBatch runs fn concurrently over each batch of targets, waiting for
// a batch to drain and the inter-batch delay to elapse before starting the
// next. Batch n+1 never overlaps batch n, which keeps total request volume
// inside the source's rate limit.
func forEachBatch(ctx context.Context, targets []string, p Pacing, fn func(ctx context.Context, target string)) {
	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = 3
	}

	for start := 0; start < len(targets); start += batchSize {
		if ctx.Err() != nil {
			return
		}

		end := start + batchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[start:end]

		done := make(chan struct{}, len(batch))
		for _, target := range batch {
			go func(t string) {
				defer func() { done <- struct{}{} }()
				fn(ctx, t)
			}(target)
		}
		for range batch {
			<-done
		}

		if end < len(targets) && p.BatchDelay > 0 {
			select {
			case <-time.After(p.BatchDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

// extractProjectName guesses the project name from an announcement title:
// everything before the first airdrop-ish keyword, dash, or colon, trimmed
// to a few words.
func extractProjectName(title string) string {
	name := title
	lower := strings.ToLower(title)
	for _, marker := range []string{" airdrop", " token", " claim", " snapshot", ":", " - ", " — ", "|"} {
		if idx := strings.Index(lower, marker); idx > 0 {
			name = title[:idx]
			lower = lower[:idx]
		}
	}
	words := strings.Fields(strings.TrimSpace(name))
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Join(words, " ")
}
