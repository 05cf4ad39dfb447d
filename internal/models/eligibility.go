package models

import "github.com/airdrop-scanner/internal/types"

// EligibilityResult is the derived, stateless outcome of matching one
// wallet's activity against one airdrop's rules. Computed on demand,
// never stored.
type EligibilityResult struct {
	Eligible            bool                `json:"eligible"`
	AirdropID           string              `json:"airdropId"`
	AirdropName         string              `json:"airdropName"`
	EstimatedValueUSD   *float64            `json:"estimatedValueUsd,omitempty"`
	Reason              string              `json:"reason"`
	MissingRequirements []string            `json:"missingRequirements,omitempty"`
	ClaimURL            string              `json:"claimUrl,omitempty"`
	FrictionLevel       types.FrictionLevel `json:"frictionLevel"`
	Categories          []string            `json:"categories,omitempty"`
}

// Redacted returns a copy safe for unauthenticated callers: the per-rule
// missing-requirement detail is suppressed, leaving only the boolean and
// the summary reason.
func (r EligibilityResult) Redacted() EligibilityResult {
	out := r
	out.MissingRequirements = nil
	return out
}
