package adapter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/airdrop-scanner/internal/types"
	"github.com/stretchr/testify/assert"
)

func fastPacing() Pacing {
	return Pacing{
		BatchSize:         2,
		BatchDelay:        0,
		RequestTimeout:    2 * time.Second,
		RequestsPerSecond: 1000,
	}
}

func TestForEachBatch_ProcessesAllTargets(t *testing.T) {
	targets := []string{"a", "b", "c", "d", "e"}

	var mu sync.Mutex
	seen := map[string]bool{}

	forEachBatch(context.Background(), targets, fastPacing(), func(_ context.Context, target string) {
		mu.Lock()
		seen[target] = true
		mu.Unlock()
	})

	assert.Len(t, seen, len(targets))
}

func TestForEachBatch_BatchesDoNotOverlap(t *testing.T) {
	targets := []string{"a", "b", "c", "d"}

	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0

	forEachBatch(context.Background(), targets, fastPacing(), func(_ context.Context, _ string) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
	})

	assert.LessOrEqual(t, maxInFlight, 2, "fan-out must stay within the batch size")
}

func TestForEachBatch_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	forEachBatch(ctx, []string{"a", "b"}, fastPacing(), func(_ context.Context, _ string) {
		calls++
	})

	assert.Zero(t, calls)
}

func TestExtractProjectName(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Foo Protocol Airdrop — Claim Now!", "Foo Protocol"},
		{"Jupiter: claim window opens", "Jupiter"},
		{"ZkSync Token Distribution announced", "ZkSync"},
		{"Announcing the Wormhole W airdrop snapshot", "Announcing the Wormhole W"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractProjectName(tt.title))
		})
	}
}

func TestChainAllowed(t *testing.T) {
	open := FetchOptions{}
	assert.True(t, open.chainAllowed(types.ChainSolana), "empty filter allows everything")

	narrow := FetchOptions{ChainFilter: []types.ChainID{types.ChainEthereum}}
	assert.True(t, narrow.chainAllowed(types.ChainEthereum))
	assert.False(t, narrow.chainAllowed(types.ChainSolana))
}
