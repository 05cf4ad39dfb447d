// Package models defines the persistent and transient data structures
// shared across the airdrop scanner services.
package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/airdrop-scanner/internal/types"
)

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Airdrop is the canonical record for a discovered or manually entered airdrop.
type Airdrop struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Symbol              string               `json:"symbol,omitempty"`
	Description         string               `json:"description,omitempty"`
	Website             string               `json:"website,omitempty"`
	TwitterURL          string               `json:"twitterUrl,omitempty"`
	DiscordURL          string               `json:"discordUrl,omitempty"`
	ClaimURL            string               `json:"claimUrl,omitempty"`
	ClaimType           types.ClaimType      `json:"claimType"`
	EstimatedValueUSD   *float64             `json:"estimatedValueUsd,omitempty"`
	EstimatedValueRange *ValueRange          `json:"estimatedValueRange,omitempty"`
	Chains              []types.ChainID      `json:"chains,omitempty"`
	PrimaryChain        types.ChainID        `json:"primaryChain,omitempty"`
	Categories          []string             `json:"categories,omitempty"`
	FrictionLevel       types.FrictionLevel  `json:"frictionLevel"`
	Rules               *AirdropRule         `json:"rules,omitempty"`
	Status              types.AirdropStatus  `json:"status"`
	Verified            bool                 `json:"verified"`
	Featured            bool                 `json:"featured"`
	Sources             []AirdropSource      `json:"sources"`
	Engagement          *EngagementMetrics   `json:"engagement,omitempty"`
	DiscoveredAt        time.Time            `json:"discoveredAt"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
	LastVerifiedAt      *time.Time           `json:"lastVerifiedAt,omitempty"`
}

// ValueRange is a min/max estimate in USD for airdrops without a point estimate.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AirdropSource is one provenance entry recording where and when a record was seen.
type AirdropSource struct {
	ID         string           `json:"id,omitempty"`
	Type       types.SourceType `json:"type"`
	URL        string           `json:"url"`
	FetchedAt  time.Time        `json:"fetchedAt"`
	Confidence float64          `json:"confidence"`
}

// EngagementMetrics carries optional community signal observed at discovery time.
type EngagementMetrics struct {
	Likes    int `json:"likes,omitempty"`
	Reposts  int `json:"reposts,omitempty"`
	Comments int `json:"comments,omitempty"`
	Score    int `json:"score,omitempty"`
}

// AirdropRule is a sparse predicate bag. A zero-value field means no
// constraint on that dimension.
type AirdropRule struct {
	RequiredPrograms    []string                 `json:"requiredPrograms,omitempty"`
	RequiredTokens      []TokenRequirement       `json:"requiredTokens,omitempty"`
	RequiredNFTs        []string                 `json:"requiredNfts,omitempty"`
	MinTransactions     int                      `json:"minTransactions,omitempty"`
	GovernanceActions   []types.GovernanceAction `json:"governanceActions,omitempty"`
	RequiredBridges     []string                 `json:"requiredBridges,omitempty"`
	TestnetParticipation bool                    `json:"testnetParticipation,omitempty"`
	EarliestTransaction *time.Time               `json:"earliestTransaction,omitempty"`
	LatestTransaction   *time.Time               `json:"latestTransaction,omitempty"`
}

// TokenRequirement demands a minimum held balance of a token mint.
type TokenRequirement struct {
	Mint       string  `json:"mint"`
	MinBalance float64 `json:"minBalance,omitempty"`
	Symbol     string  `json:"symbol,omitempty"`
}

// IsEmpty reports whether the rule constrains nothing.
func (r *AirdropRule) IsEmpty() bool {
	if r == nil {
		return true
	}
	return len(r.RequiredPrograms) == 0 &&
		len(r.RequiredTokens) == 0 &&
		len(r.RequiredNFTs) == 0 &&
		r.MinTransactions == 0 &&
		len(r.GovernanceActions) == 0 &&
		len(r.RequiredBridges) == 0 &&
		!r.TestnetParticipation &&
		r.EarliestTransaction == nil &&
		r.LatestTransaction == nil
}

// GenerateID derives a deterministic slug-cased identifier from a name.
// The same name always produces the same ID so re-discovery is idempotent.
func GenerateID(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// DeriveSymbol builds a ticker-style symbol from the first letters of a name
// when the source did not provide one.
func DeriveSymbol(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		w := strings.ToUpper(words[0])
		if len(w) > 4 {
			w = w[:4]
		}
		return w
	}
	var b strings.Builder
	for _, w := range words {
		if len(b.String()) >= 5 {
			break
		}
		b.WriteByte(strings.ToUpper(w)[0])
	}
	return b.String()
}

// NormalizeHost strips scheme and www. from a URL so records from different
// sources pointing at the same site compare equal.
func NormalizeHost(rawURL string) string {
	u := strings.TrimSpace(strings.ToLower(rawURL))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	if idx := strings.IndexAny(u, "/?#"); idx >= 0 {
		u = u[:idx]
	}
	return u
}
