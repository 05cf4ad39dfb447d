package models

import (
	"time"

	"github.com/airdrop-scanner/internal/types"
)

// ScoredCandidate is the transient output of a source adapter: a partial
// airdrop carrying enough fields to become canonical after merge, plus the
// provenance and confidence the scorer assigned.
type ScoredCandidate struct {
	Name                string              `json:"name"`
	Symbol              string              `json:"symbol,omitempty"`
	Description         string              `json:"description,omitempty"`
	Website             string              `json:"website,omitempty"`
	TwitterURL          string              `json:"twitterUrl,omitempty"`
	ClaimURL            string              `json:"claimUrl,omitempty"`
	ClaimType           types.ClaimType     `json:"claimType,omitempty"`
	EstimatedValueUSD   *float64            `json:"estimatedValueUsd,omitempty"`
	Chains              []types.ChainID     `json:"chains,omitempty"`
	PrimaryChain        types.ChainID       `json:"primaryChain,omitempty"`
	Categories          []string            `json:"categories,omitempty"`
	FrictionLevel       types.FrictionLevel `json:"frictionLevel,omitempty"`
	Status              types.AirdropStatus `json:"status,omitempty"`
	Verified            bool                `json:"verified,omitempty"`
	Engagement          *EngagementMetrics  `json:"engagement,omitempty"`
	Sources             []AirdropSource     `json:"sources"`
}

// Confidence returns the first source's confidence score, which is the
// value the orchestrator's minimum-confidence filter compares against.
func (c *ScoredCandidate) Confidence() float64 {
	if len(c.Sources) == 0 {
		return 0
	}
	return c.Sources[0].Confidence
}

// DiscoveryResult is the outcome of one adapter run. A failed target is
// recorded in Errors without failing the run.
type DiscoveryResult struct {
	Success   bool              `json:"success"`
	Source    types.SourceType  `json:"source"`
	Airdrops  []ScoredCandidate `json:"airdrops"`
	Errors    []string          `json:"errors,omitempty"`
	ScrapedAt time.Time         `json:"scrapedAt"`
}

// RunSummary aggregates one orchestrator run for the status endpoint.
type RunSummary struct {
	RunID        string                   `json:"runId"`
	StartedAt    time.Time                `json:"startedAt"`
	FinishedAt   time.Time                `json:"finishedAt"`
	SourceCounts map[types.SourceType]int `json:"sourceCounts"`
	Discovered   int                      `json:"discovered"`
	New          int                      `json:"new"`
	Updated      int                      `json:"updated"`
	Errors       []string                 `json:"errors,omitempty"`
}
