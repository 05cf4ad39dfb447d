package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/storage"
	"github.com/airdrop-scanner/internal/types"
)

func newTestAirdropService(t *testing.T) (*AirdropService, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	records := []*models.Airdrop{
		{ID: "jupiter", Name: "Jupiter", Status: types.StatusLive, Verified: true,
			Rules:        &models.AirdropRule{MinTransactions: 3},
			DiscoveredAt: time.Now()},
		{ID: "foo-protocol", Name: "Foo Protocol", Status: types.StatusUnverified,
			DiscoveredAt: time.Now().Add(-time.Hour)},
	}
	for _, a := range records {
		require.NoError(t, store.Upsert(ctx, a))
	}
	return NewAirdropService(store, nil), store
}

func TestAirdropList_DefaultsToLiveAndStripsRules(t *testing.T) {
	svc, _ := newTestAirdropService(t)

	out, err := svc.List(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, out, 1, "unverified records are hidden by the live default")
	assert.Equal(t, "jupiter", out[0].ID)
	assert.Nil(t, out[0].Rules, "rules must never appear in listings")
}

func TestAirdropList_ExplicitStatus(t *testing.T) {
	svc, _ := newTestAirdropService(t)

	out, err := svc.List(context.Background(), &storage.AirdropFilters{Status: types.StatusUnverified})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "foo-protocol", out[0].ID)
}

func TestAirdropGet_KeepsRules(t *testing.T) {
	svc, _ := newTestAirdropService(t)

	a, err := svc.Get(context.Background(), "jupiter")
	require.NoError(t, err)
	require.NotNil(t, a.Rules)
	assert.Equal(t, 3, a.Rules.MinTransactions)
}

func TestAirdropGet_Unknown(t *testing.T) {
	svc, _ := newTestAirdropService(t)

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrAirdropNotFound)
}

func TestAirdropUpdate_PartialAndDirectional(t *testing.T) {
	svc, store := newTestAirdropService(t)
	ctx := context.Background()

	// Administrative updates may revoke what the automated merge never could.
	verified := false
	ended := types.StatusEnded
	desc := "claim window closed"
	updated, err := svc.Update(ctx, "jupiter", &AirdropUpdate{
		Verified:    &verified,
		Status:      &ended,
		Description: &desc,
	})
	require.NoError(t, err)

	assert.False(t, updated.Verified)
	assert.Equal(t, types.StatusEnded, updated.Status)
	assert.Equal(t, "claim window closed", updated.Description)
	assert.Equal(t, "Jupiter", updated.Name, "untouched fields survive")

	persisted, err := store.Get(ctx, "jupiter")
	require.NoError(t, err)
	assert.Equal(t, types.StatusEnded, persisted.Status)
}

func TestAirdropUpdate_VerifyStampsTimestamp(t *testing.T) {
	svc, _ := newTestAirdropService(t)

	verified := true
	updated, err := svc.Update(context.Background(), "foo-protocol", &AirdropUpdate{Verified: &verified})
	require.NoError(t, err)
	require.NotNil(t, updated.LastVerifiedAt)
}

func TestAirdropUpdate_Unknown(t *testing.T) {
	svc, _ := newTestAirdropService(t)

	name := "x"
	_, err := svc.Update(context.Background(), "nope", &AirdropUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrAirdropNotFound)
}

func TestAirdropDelete(t *testing.T) {
	svc, store := newTestAirdropService(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "jupiter"))
	_, err := store.Get(ctx, "jupiter")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "jupiter"), ErrAirdropNotFound)
}

func TestAirdropStats(t *testing.T) {
	svc, _ := newTestAirdropService(t)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Verified)
}
