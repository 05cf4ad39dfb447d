package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/types"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// AirdropRepository persists canonical airdrop records in Postgres.
// Structured sub-documents (rules, sources, engagement) live in JSONB
// columns since they are read and written whole.
type AirdropRepository struct {
	db *PostgresDB
}

// NewAirdropRepository creates a new airdrop repository
func NewAirdropRepository(db *PostgresDB) *AirdropRepository {
	return &AirdropRepository{db: db}
}

const airdropColumns = `
	id, name, symbol, description, website, twitter_url, discord_url,
	claim_url, claim_type, estimated_value_usd, estimated_value_range,
	chains, primary_chain, categories, friction_level, rules, status,
	verified, featured, sources, engagement,
	discovered_at, created_at, updated_at, last_verified_at
`

// Get retrieves an airdrop by id
func (r *AirdropRepository) Get(ctx context.Context, id string) (*models.Airdrop, error) {
	query := `SELECT ` + airdropColumns + ` FROM airdrops WHERE id = $1`

	row := r.db.Pool().QueryRow(ctx, query, id)
	airdrop, err := scanAirdrop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get airdrop: %w", err)
	}
	return airdrop, nil
}

// List retrieves airdrops matching the filters, newest first
func (r *AirdropRepository) List(ctx context.Context, filters *AirdropFilters) ([]*models.Airdrop, error) {
	query := `SELECT ` + airdropColumns + ` FROM airdrops`

	var conditions []string
	var args []interface{}
	argN := 1

	addCondition := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, argN))
		args = append(args, value)
		argN++
	}

	if filters != nil {
		if filters.Status != "" {
			addCondition("status = $%d", filters.Status)
		}
		if filters.Category != "" {
			addCondition("$%d = ANY(categories)", filters.Category)
		}
		if filters.Friction != "" {
			addCondition("friction_level = $%d", filters.Friction)
		}
		if filters.Verified != nil {
			addCondition("verified = $%d", *filters.Verified)
		}
		if filters.Featured != nil {
			addCondition("featured = $%d", *filters.Featured)
		}
		if filters.Search != "" {
			pattern := "%" + strings.ToLower(filters.Search) + "%"
			conditions = append(conditions, fmt.Sprintf(
				"(LOWER(name) LIKE $%d OR LOWER(symbol) LIKE $%d OR LOWER(description) LIKE $%d)",
				argN, argN, argN))
			args = append(args, pattern)
			argN++
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY discovered_at DESC"

	if filters != nil && filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argN)
		args = append(args, filters.Limit)
		argN++
	}
	if filters != nil && filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argN)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list airdrops: %w", err)
	}
	defer rows.Close()

	var airdrops []*models.Airdrop
	for rows.Next() {
		airdrop, err := scanAirdrop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan airdrop row: %w", err)
		}
		airdrops = append(airdrops, airdrop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading airdrop rows: %w", err)
	}
	return airdrops, nil
}

// Upsert inserts or replaces an airdrop record atomically by id
func (r *AirdropRepository) Upsert(ctx context.Context, a *models.Airdrop) error {
	rulesJSON, err := marshalNullable(a.Rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	sourcesJSON, err := json.Marshal(a.Sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}
	engagementJSON, err := marshalNullable(a.Engagement)
	if err != nil {
		return fmt.Errorf("failed to marshal engagement: %w", err)
	}
	rangeJSON, err := marshalNullable(a.EstimatedValueRange)
	if err != nil {
		return fmt.Errorf("failed to marshal value range: %w", err)
	}

	chains := make([]string, len(a.Chains))
	for i, c := range a.Chains {
		chains[i] = string(c)
	}

	query := `
		INSERT INTO airdrops (` + airdropColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			description = EXCLUDED.description,
			website = EXCLUDED.website,
			twitter_url = EXCLUDED.twitter_url,
			discord_url = EXCLUDED.discord_url,
			claim_url = EXCLUDED.claim_url,
			claim_type = EXCLUDED.claim_type,
			estimated_value_usd = EXCLUDED.estimated_value_usd,
			estimated_value_range = EXCLUDED.estimated_value_range,
			chains = EXCLUDED.chains,
			primary_chain = EXCLUDED.primary_chain,
			categories = EXCLUDED.categories,
			friction_level = EXCLUDED.friction_level,
			rules = EXCLUDED.rules,
			status = EXCLUDED.status,
			verified = EXCLUDED.verified,
			featured = EXCLUDED.featured,
			sources = EXCLUDED.sources,
			engagement = EXCLUDED.engagement,
			updated_at = EXCLUDED.updated_at,
			last_verified_at = EXCLUDED.last_verified_at
	`

	_, err = r.db.Pool().Exec(ctx, query,
		a.ID,
		a.Name,
		a.Symbol,
		a.Description,
		a.Website,
		a.TwitterURL,
		a.DiscordURL,
		a.ClaimURL,
		a.ClaimType,
		a.EstimatedValueUSD,
		rangeJSON,
		chains,
		a.PrimaryChain,
		a.Categories,
		a.FrictionLevel,
		rulesJSON,
		a.Status,
		a.Verified,
		a.Featured,
		sourcesJSON,
		engagementJSON,
		a.DiscoveredAt,
		a.CreatedAt,
		a.UpdatedAt,
		a.LastVerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert airdrop: %w", err)
	}
	return nil
}

// Delete removes an airdrop by id
func (r *AirdropRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM airdrops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete airdrop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates record counts by status and flags
func (r *AirdropRepository) Stats(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{ByStatus: make(map[types.AirdropStatus]int)}

	rows, err := r.db.Pool().Query(ctx, `SELECT status, COUNT(*) FROM airdrops GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status types.AirdropStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading status counts: %w", err)
	}

	query := `
		SELECT
			COUNT(*) FILTER (WHERE verified),
			COUNT(*) FILTER (WHERE featured),
			COUNT(*) FILTER (WHERE rules IS NOT NULL)
		FROM airdrops
	`
	if err := r.db.Pool().QueryRow(ctx, query).Scan(&stats.Verified, &stats.Featured, &stats.WithRules); err != nil {
		return nil, fmt.Errorf("failed to count flags: %w", err)
	}
	return stats, nil
}

func marshalNullable(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case *models.AirdropRule:
		if val == nil {
			return nil, nil
		}
	case *models.EngagementMetrics:
		if val == nil {
			return nil, nil
		}
	case *models.ValueRange:
		if val == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func scanAirdrop(row pgx.Row) (*models.Airdrop, error) {
	var a models.Airdrop
	var rulesJSON, sourcesJSON, engagementJSON, rangeJSON []byte
	var chains []string

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Symbol,
		&a.Description,
		&a.Website,
		&a.TwitterURL,
		&a.DiscordURL,
		&a.ClaimURL,
		&a.ClaimType,
		&a.EstimatedValueUSD,
		&rangeJSON,
		&chains,
		&a.PrimaryChain,
		&a.Categories,
		&a.FrictionLevel,
		&rulesJSON,
		&a.Status,
		&a.Verified,
		&a.Featured,
		&sourcesJSON,
		&engagementJSON,
		&a.DiscoveredAt,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.LastVerifiedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Chains = make([]types.ChainID, len(chains))
	for i, c := range chains {
		a.Chains[i] = types.ChainID(c)
	}
	if len(rulesJSON) > 0 {
		if err := json.Unmarshal(rulesJSON, &a.Rules); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rules: %w", err)
		}
	}
	if len(sourcesJSON) > 0 {
		if err := json.Unmarshal(sourcesJSON, &a.Sources); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
		}
	}
	if len(engagementJSON) > 0 {
		if err := json.Unmarshal(engagementJSON, &a.Engagement); err != nil {
			return nil, fmt.Errorf("failed to unmarshal engagement: %w", err)
		}
	}
	if len(rangeJSON) > 0 {
		if err := json.Unmarshal(rangeJSON, &a.EstimatedValueRange); err != nil {
			return nil, fmt.Errorf("failed to unmarshal value range: %w", err)
		}
	}
	return &a, nil
}
