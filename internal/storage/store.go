package storage

import (
	"context"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/types"
)

// AirdropFilters narrows List results. Zero-value fields apply no filter.
type AirdropFilters struct {
	Status   types.AirdropStatus
	Category string
	Friction types.FrictionLevel
	Verified *bool
	Featured *bool
	Search   string // case-insensitive substring over name/symbol/description
	Limit    int
	Offset   int
}

// StoreStats aggregates record counts for the status endpoint.
type StoreStats struct {
	Total     int                         `json:"total"`
	ByStatus  map[types.AirdropStatus]int `json:"byStatus"`
	Verified  int                         `json:"verified"`
	Featured  int                         `json:"featured"`
	WithRules int                         `json:"withRules"`
}

// AirdropStore is the keyed persistence contract shared by the Postgres
// repository and the in-memory store used in tests. The merge engine and
// orchestrator receive it as an explicit dependency.
type AirdropStore interface {
	Get(ctx context.Context, id string) (*models.Airdrop, error)
	List(ctx context.Context, filters *AirdropFilters) ([]*models.Airdrop, error)
	Upsert(ctx context.Context, airdrop *models.Airdrop) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*StoreStats, error)
}
