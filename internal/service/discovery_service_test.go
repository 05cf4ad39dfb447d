package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdrop-scanner/internal/adapter"
	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/storage"
	"github.com/airdrop-scanner/internal/types"
)

// stubAdapter lets tests script adapter behavior without network calls.
type stubAdapter struct {
	source types.SourceType
	result *models.DiscoveryResult
	panics bool
}

func (s *stubAdapter) Source() types.SourceType { return s.source }

func (s *stubAdapter) Fetch(ctx context.Context, opts adapter.FetchOptions) *models.DiscoveryResult {
	if s.panics {
		panic("stub adapter exploded")
	}
	return s.result
}

func stubCandidate(name string, confidence float64) models.ScoredCandidate {
	return models.ScoredCandidate{
		Name:   name,
		Status: types.StatusLive,
		Sources: []models.AirdropSource{{
			Type:       types.SourceGitHub,
			URL:        "https://github.com/" + models.GenerateID(name),
			FetchedAt:  time.Now(),
			Confidence: confidence,
		}},
	}
}

func newTestDiscovery(store storage.AirdropStore, adapters ...adapter.SourceAdapter) *DiscoveryService {
	return NewDiscoveryService(adapters, NewMergeService(), store, nil, nil, nil, 0.5, 6*time.Hour)
}

func TestDiscoveryRun_FanOutAndPersist(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestDiscovery(store,
		&stubAdapter{source: types.SourceGitHub, result: &models.DiscoveryResult{
			Success: true,
			Source:  types.SourceGitHub,
			Airdrops: []models.ScoredCandidate{
				stubCandidate("Foo Protocol", 0.8),
				stubCandidate("Low Signal", 0.3), // below the confidence floor
			},
		}},
		&stubAdapter{source: types.SourceRSS, result: &models.DiscoveryResult{
			Success:  true,
			Source:   types.SourceRSS,
			Airdrops: []models.ScoredCandidate{stubCandidate("Bar Bridge", 0.7)},
		}},
	)

	summary, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Discovered, "sub-threshold candidates are filtered out")
	assert.Equal(t, 2, summary.New)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 1, summary.SourceCounts[types.SourceGitHub])
	assert.Equal(t, 1, summary.SourceCounts[types.SourceRSS])
	assert.NotEmpty(t, summary.RunID)

	persisted, err := store.Get(context.Background(), "foo-protocol")
	require.NoError(t, err)
	assert.Equal(t, types.StatusLive, persisted.Status)

	_, err = store.Get(context.Background(), "low-signal")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDiscoveryRun_PanicIsolation(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestDiscovery(store,
		&stubAdapter{source: types.SourceGitHub, panics: true},
		&stubAdapter{source: types.SourceRSS, result: &models.DiscoveryResult{
			Success:  true,
			Source:   types.SourceRSS,
			Airdrops: []models.ScoredCandidate{stubCandidate("Survivor", 0.9)},
		}},
	)

	summary, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err, "a panicking adapter must not fail the run")

	assert.Equal(t, 1, summary.New)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "panicked")
}

func TestDiscoveryRun_AdapterErrorsAccumulate(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestDiscovery(store,
		&stubAdapter{source: types.SourceGitHub, result: &models.DiscoveryResult{
			Source: types.SourceGitHub,
			Errors: []string{"github: repo a failed", "github: repo b failed"},
		}},
		&stubAdapter{source: types.SourceForum, result: &models.DiscoveryResult{
			Success:  true,
			Source:   types.SourceForum,
			Airdrops: []models.ScoredCandidate{stubCandidate("Still Works", 0.6)},
		}},
	)

	summary, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Len(t, summary.Errors, 2)
	assert.Equal(t, 1, summary.New)
}

func TestDiscoveryRun_PerRunMinConfidence(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestDiscovery(store, &stubAdapter{source: types.SourceGitHub, result: &models.DiscoveryResult{
		Success:  true,
		Source:   types.SourceGitHub,
		Airdrops: []models.ScoredCandidate{stubCandidate("Borderline", 0.6)},
	}})

	strict, err := svc.Run(context.Background(), RunOptions{MinConfidence: 0.8})
	require.NoError(t, err)
	assert.Equal(t, 0, strict.Discovered, "per-run floor overrides the default")

	relaxed, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, relaxed.Discovered, "zero falls back to the configured floor")
}

func TestDiscoveryRun_SourceSubset(t *testing.T) {
	store := storage.NewMemoryStore()
	github := &stubAdapter{source: types.SourceGitHub, result: &models.DiscoveryResult{
		Success:  true,
		Source:   types.SourceGitHub,
		Airdrops: []models.ScoredCandidate{stubCandidate("From GitHub", 0.8)},
	}}
	rss := &stubAdapter{source: types.SourceRSS, result: &models.DiscoveryResult{
		Success:  true,
		Source:   types.SourceRSS,
		Airdrops: []models.ScoredCandidate{stubCandidate("From RSS", 0.8)},
	}}
	svc := newTestDiscovery(store, github, rss)

	summary, err := svc.Run(context.Background(), RunOptions{Sources: []types.SourceType{types.SourceRSS}})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.New)
	_, hasGitHub := summary.SourceCounts[types.SourceGitHub]
	assert.False(t, hasGitHub)
}

func TestDiscoveryRun_UnknownSourceSubset(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestDiscovery(store, &stubAdapter{source: types.SourceGitHub, result: &models.DiscoveryResult{Source: types.SourceGitHub}})

	_, err := svc.Run(context.Background(), RunOptions{Sources: []types.SourceType{types.SourceSearch}})
	assert.Error(t, err)
}

func TestDiscoveryRun_RediscoveryUpdates(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestDiscovery(store, &stubAdapter{source: types.SourceGitHub, result: &models.DiscoveryResult{
		Success:  true,
		Source:   types.SourceGitHub,
		Airdrops: []models.ScoredCandidate{stubCandidate("Foo Protocol", 0.8)},
	}})

	first, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.New)

	second, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.New)
	assert.Equal(t, 1, second.Updated)
}

func TestDiscoveryRun_EnrichmentRefinesCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Foo Protocol", "symbol": "FOO", "description": "Refined description", "isOngoing": true, "confidence": 0.9}`))
	}))
	defer srv.Close()

	store := storage.NewMemoryStore()
	enrich := adapter.NewEnrichClient(srv.URL, "key")
	svc := NewDiscoveryService(
		[]adapter.SourceAdapter{&stubAdapter{source: types.SourceGitHub, result: &models.DiscoveryResult{
			Success:  true,
			Source:   types.SourceGitHub,
			Airdrops: []models.ScoredCandidate{stubCandidate("foo protocol airdrop", 0.8)},
		}}},
		NewMergeService(), store, enrich, nil, nil, 0.5, 6*time.Hour)

	_, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	persisted, err := store.Get(context.Background(), "foo-protocol")
	require.NoError(t, err)
	assert.Equal(t, "FOO", persisted.Symbol)
	assert.Equal(t, "Refined description", persisted.Description)
}

func TestDiscoveryService_LastRunAndSchedule(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestDiscovery(store, &stubAdapter{source: types.SourceGitHub, result: &models.DiscoveryResult{
		Success: true,
		Source:  types.SourceGitHub,
	}})

	_, ok := svc.LastRun(context.Background())
	assert.False(t, ok, "no summary before the first run")

	summary, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	last, ok := svc.LastRun(context.Background())
	require.True(t, ok)
	assert.Equal(t, summary.RunID, last.RunID)

	next := svc.NextScheduledRun(context.Background())
	assert.WithinDuration(t, last.FinishedAt.Add(6*time.Hour), next, time.Second)
}
