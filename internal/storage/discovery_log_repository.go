package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/types"
)

// DiscoveryLogRepository appends per-source discovery run rows to
// ClickHouse. The log is write-mostly; reads serve run history queries.
type DiscoveryLogRepository struct {
	db *ClickHouseDB
}

// NewDiscoveryLogRepository creates a new discovery log repository
func NewDiscoveryLogRepository(db *ClickHouseDB) *DiscoveryLogRepository {
	return &DiscoveryLogRepository{db: db}
}

// DiscoveryRunRow is one per-source row of a discovery run.
type DiscoveryRunRow struct {
	RunID      string           `json:"runId"`
	Source     types.SourceType `json:"source"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Discovered int              `json:"discovered"`
	New        int              `json:"new"`
	Updated    int              `json:"updated"`
	Errors     []string         `json:"errors,omitempty"`
}

// RecordRun writes one row per source that participated in the run.
func (r *DiscoveryLogRepository) RecordRun(ctx context.Context, summary *models.RunSummary) error {
	batch, err := r.db.Conn().PrepareBatch(ctx, `
		INSERT INTO discovery_runs (
			run_id, source, started_at, finished_at,
			discovered, new, updated, error_count, errors
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare discovery log batch: %w", err)
	}

	for source, count := range summary.SourceCounts {
		err := batch.Append(
			summary.RunID,
			string(source),
			summary.StartedAt,
			summary.FinishedAt,
			uint32(count),               // #nosec G115 - counts are small and non-negative
			uint32(summary.New),         // #nosec G115
			uint32(summary.Updated),     // #nosec G115
			uint32(len(summary.Errors)), // #nosec G115
			summary.Errors,
		)
		if err != nil {
			return fmt.Errorf("failed to append discovery log row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send discovery log batch: %w", err)
	}
	return nil
}

// RecentRuns returns the latest run rows, newest first.
func (r *DiscoveryLogRepository) RecentRuns(ctx context.Context, limit int) ([]DiscoveryRunRow, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT run_id, source, started_at, finished_at,
			   discovered, new, updated, errors
		FROM discovery_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Conn().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query discovery runs: %w", err)
	}
	defer rows.Close()

	var out []DiscoveryRunRow
	for rows.Next() {
		var row DiscoveryRunRow
		var source string
		var discovered, newCount, updated uint32
		if err := rows.Scan(
			&row.RunID, &source, &row.StartedAt, &row.FinishedAt,
			&discovered, &newCount, &updated, &row.Errors,
		); err != nil {
			return nil, fmt.Errorf("failed to scan discovery run row: %w", err)
		}
		row.Source = types.SourceType(source)
		row.Discovered = int(discovered)
		row.New = int(newCount)
		row.Updated = int(updated)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading discovery run rows: %w", err)
	}
	return out, nil
}
