package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/service"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(ctx context.Context, opts service.RunOptions) (*models.RunSummary, error) {
	r.runs.Add(1)
	return &models.RunSummary{RunID: "test"}, nil
}

func TestNewDiscoveryWorker_Validation(t *testing.T) {
	_, err := NewDiscoveryWorker(&DiscoveryWorkerConfig{})
	assert.Error(t, err, "nil discovery service must be rejected")

	_, err = NewDiscoveryWorker(&DiscoveryWorkerConfig{
		Discovery: &countingRunner{},
		Interval:  time.Second,
	})
	assert.Error(t, err, "sub-minute intervals must be rejected")
}

func TestDiscoveryWorker_RunsImmediatelyOnStart(t *testing.T) {
	runner := &countingRunner{}
	w, err := NewDiscoveryWorker(&DiscoveryWorkerConfig{
		Discovery: runner,
		Interval:  time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return runner.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDiscoveryWorker_KickTriggersRun(t *testing.T) {
	runner := &countingRunner{}
	w, err := NewDiscoveryWorker(&DiscoveryWorkerConfig{
		Discovery: runner,
		Interval:  time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.Eventually(t, func() bool {
		return runner.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)

	assert.True(t, w.Kick())
	assert.Eventually(t, func() bool {
		return runner.runs.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestDiscoveryWorker_DoubleStartRejected(t *testing.T) {
	w, err := NewDiscoveryWorker(&DiscoveryWorkerConfig{
		Discovery: &countingRunner{},
		Interval:  time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}

func TestDiscoveryWorker_StopIsIdempotentAfterLoopExit(t *testing.T) {
	w, err := NewDiscoveryWorker(&DiscoveryWorkerConfig{
		Discovery: &countingRunner{},
		Interval:  time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	assert.False(t, w.IsRunning())
	w.Stop() // must not panic or block
}
