package service

import (
	"strings"
	"time"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/types"
)

// ReconcileResult splits one reconcile pass into the records that did not
// match anything in the store and the records that were merged into an
// existing entry. The two sets are disjoint.
type ReconcileResult struct {
	New     []*models.Airdrop `json:"new"`
	Updated []*models.Airdrop `json:"updated"`
}

// MergeService reconciles freshly discovered candidates against the
// canonical store. Matching is by case-insensitive name first, then by
// normalized website host; first match wins.
type MergeService struct {
	now func() time.Time
}

// NewMergeService creates a merge service using wall-clock time.
func NewMergeService() *MergeService {
	return &MergeService{now: time.Now}
}

// Reconcile matches every candidate against the existing records and either
// materializes a new Airdrop or merges into the matched one. Candidates
// matching the same existing record within one pass are folded together.
func (s *MergeService) Reconcile(candidates []models.ScoredCandidate, existing []*models.Airdrop) *ReconcileResult {
	result := &ReconcileResult{}

	// Work on copies so callers keep their snapshot of the store untouched
	// until they decide to persist.
	pool := make([]*models.Airdrop, 0, len(existing))
	for _, a := range existing {
		copied := *a
		pool = append(pool, &copied)
	}
	updated := make(map[string]*models.Airdrop)

	for i := range candidates {
		candidate := &candidates[i]
		if strings.TrimSpace(candidate.Name) == "" {
			continue
		}

		match := findMatch(candidate, pool)
		if match == nil {
			created := s.materialize(candidate)
			result.New = append(result.New, created)
			// New records join the pool so a second candidate for the same
			// project in this batch merges instead of duplicating.
			pool = append(pool, created)
			continue
		}

		s.mergeInto(match, candidate)
		if _, isNew := updated[match.ID]; !isNew && !containsAirdrop(result.New, match.ID) {
			updated[match.ID] = match
			result.Updated = append(result.Updated, match)
		}
	}

	return result
}

func findMatch(candidate *models.ScoredCandidate, pool []*models.Airdrop) *models.Airdrop {
	name := strings.ToLower(strings.TrimSpace(candidate.Name))
	for _, a := range pool {
		if strings.ToLower(strings.TrimSpace(a.Name)) == name {
			return a
		}
	}
	host := models.NormalizeHost(candidate.Website)
	if host == "" {
		return nil
	}
	for _, a := range pool {
		if a.Website != "" && models.NormalizeHost(a.Website) == host {
			return a
		}
	}
	return nil
}

// materialize turns a candidate into a canonical record, defaulting every
// field the source left blank.
func (s *MergeService) materialize(c *models.ScoredCandidate) *models.Airdrop {
	now := s.now()

	symbol := c.Symbol
	if symbol == "" {
		symbol = models.DeriveSymbol(c.Name)
	}
	categories := c.Categories
	if len(categories) == 0 {
		categories = []string{"defi"}
	}
	friction := c.FrictionLevel
	if friction == "" {
		friction = types.FrictionMedium
	}
	claimType := c.ClaimType
	if claimType == "" {
		claimType = types.ClaimMixed
	}
	status := c.Status
	if status == "" {
		status = types.StatusUnverified
	}

	a := &models.Airdrop{
		ID:                models.GenerateID(c.Name),
		Name:              strings.TrimSpace(c.Name),
		Symbol:            symbol,
		Description:       c.Description,
		Website:           c.Website,
		TwitterURL:        c.TwitterURL,
		ClaimURL:          c.ClaimURL,
		ClaimType:         claimType,
		EstimatedValueUSD: c.EstimatedValueUSD,
		Chains:            c.Chains,
		PrimaryChain:      c.PrimaryChain,
		Categories:        categories,
		FrictionLevel:     friction,
		Status:            status,
		Verified:          c.Verified,
		Engagement:        c.Engagement,
		Sources:           append([]models.AirdropSource{}, c.Sources...),
		DiscoveredAt:      now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if c.Verified {
		a.LastVerifiedAt = &now
	}
	return a
}

// mergeInto refreshes scalar fields from the candidate: a present incoming
// value replaces the stored one, an absent value keeps it, so a rescan can
// update a stale description or claim URL. Status upgrades to live but
// never downgrades, and verified is OR'd so an automated rescan can never
// revoke administrator-confirmed state.
func (s *MergeService) mergeInto(existing *models.Airdrop, c *models.ScoredCandidate) {
	now := s.now()

	if c.Symbol != "" {
		existing.Symbol = c.Symbol
	}
	if c.Description != "" {
		existing.Description = c.Description
	}
	if c.Website != "" {
		existing.Website = c.Website
	}
	if c.TwitterURL != "" {
		existing.TwitterURL = c.TwitterURL
	}
	if c.ClaimURL != "" {
		existing.ClaimURL = c.ClaimURL
	}
	if c.ClaimType != "" {
		existing.ClaimType = c.ClaimType
	}
	if c.EstimatedValueUSD != nil {
		existing.EstimatedValueUSD = c.EstimatedValueUSD
	}
	if len(c.Chains) > 0 {
		existing.Chains = c.Chains
	}
	if c.PrimaryChain != "" {
		existing.PrimaryChain = c.PrimaryChain
	}
	if len(c.Categories) > 0 {
		existing.Categories = c.Categories
	}
	if c.FrictionLevel != "" {
		existing.FrictionLevel = c.FrictionLevel
	}
	if c.Engagement != nil {
		existing.Engagement = c.Engagement
	}

	if c.Status == types.StatusLive {
		existing.Status = types.StatusLive
	}
	existing.Verified = existing.Verified || c.Verified

	existing.Sources = appendNewSources(existing.Sources, c.Sources)

	existing.UpdatedAt = now
	if c.Verified {
		existing.LastVerifiedAt = &now
	}
}

// appendNewSources unions by URL. Provenance is append-only: merge never
// removes a source entry.
func appendNewSources(existing, incoming []models.AirdropSource) []models.AirdropSource {
	seen := make(map[string]bool, len(existing))
	for _, src := range existing {
		seen[src.URL] = true
	}
	for _, src := range incoming {
		if src.URL == "" || seen[src.URL] {
			continue
		}
		seen[src.URL] = true
		existing = append(existing, src)
	}
	return existing
}

func containsAirdrop(list []*models.Airdrop, id string) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}
