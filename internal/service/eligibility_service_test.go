package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/types"
)

func TestEvaluate_NoRulesIsOpenToAll(t *testing.T) {
	svc := NewEligibilityService()
	airdrop := &models.Airdrop{ID: "foo", Name: "Foo", Status: types.StatusLive}
	activity := &models.WalletActivity{Address: "0xabc"}

	result := svc.Evaluate(activity, airdrop)

	assert.True(t, result.Eligible)
	assert.Empty(t, result.MissingRequirements)
	assert.Contains(t, result.Reason, "open to all")
}

func TestEvaluate_CollectsAllFailures(t *testing.T) {
	svc := NewEligibilityService()
	airdrop := &models.Airdrop{
		ID:   "foo",
		Name: "Foo",
		Rules: &models.AirdropRule{
			RequiredPrograms:  []string{"jupiter"},
			RequiredTokens:    []models.TokenRequirement{{Mint: "JUPmint", Symbol: "JUP", MinBalance: 10}},
			RequiredNFTs:      []string{"madlads"},
			MinTransactions:   5,
			GovernanceActions: []types.GovernanceAction{types.GovernanceVote},
		},
	}
	activity := &models.WalletActivity{Address: "0xabc"}

	result := svc.Evaluate(activity, airdrop)

	assert.False(t, result.Eligible)
	assert.Len(t, result.MissingRequirements, 5, "every populated predicate must report its gap")
}

func TestEvaluate_MinTransactionsMessageNamesBothCounts(t *testing.T) {
	svc := NewEligibilityService()
	airdrop := &models.Airdrop{
		ID:    "foo",
		Name:  "Foo",
		Rules: &models.AirdropRule{MinTransactions: 5},
	}
	activity := &models.WalletActivity{
		Address:           "0xabc",
		TransactionCounts: map[string]int{"jupiter": 1, "drift": 1},
	}

	result := svc.Evaluate(activity, airdrop)

	assert.False(t, result.Eligible)
	require.Len(t, result.MissingRequirements, 1)
	assert.Contains(t, result.MissingRequirements[0], "5")
	assert.Contains(t, result.MissingRequirements[0], "2")
}

func TestEvaluate_TokenBalanceBelowMinimum(t *testing.T) {
	svc := NewEligibilityService()
	airdrop := &models.Airdrop{
		ID:   "foo",
		Name: "Foo",
		Rules: &models.AirdropRule{
			RequiredTokens: []models.TokenRequirement{{Mint: "JUPmint", Symbol: "JUP", MinBalance: 100}},
		},
	}
	activity := &models.WalletActivity{
		Address:       "0xabc",
		TokenBalances: map[string]float64{"JUPmint": 40},
	}

	result := svc.Evaluate(activity, airdrop)

	assert.False(t, result.Eligible)
	require.Len(t, result.MissingRequirements, 1)
	assert.Contains(t, result.MissingRequirements[0], "JUP")
}

func TestEvaluate_TestnetParticipationNeverSatisfied(t *testing.T) {
	svc := NewEligibilityService()
	airdrop := &models.Airdrop{
		ID:    "foo",
		Name:  "Foo",
		Rules: &models.AirdropRule{TestnetParticipation: true},
	}
	// Activity rich enough to satisfy anything automated.
	activity := &models.WalletActivity{
		Address:           "0xabc",
		Programs:          []string{"everything"},
		TransactionCounts: map[string]int{"everything": 10_000},
	}

	result := svc.Evaluate(activity, airdrop)

	assert.False(t, result.Eligible)
	require.Len(t, result.MissingRequirements, 1)
	assert.Contains(t, result.MissingRequirements[0], "manual verification")
}

func TestEvaluate_TimeWindowChecks(t *testing.T) {
	svc := NewEligibilityService()
	earliest := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	airdrop := &models.Airdrop{
		ID:   "foo",
		Name: "Foo",
		Rules: &models.AirdropRule{
			EarliestTransaction: &earliest,
			LatestTransaction:   &latest,
		},
	}

	t.Run("no timestamps passes trivially", func(t *testing.T) {
		result := svc.Evaluate(&models.WalletActivity{Address: "0xabc"}, airdrop)
		assert.True(t, result.Eligible)
	})

	t.Run("activity inside window passes", func(t *testing.T) {
		first := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		result := svc.Evaluate(&models.WalletActivity{Address: "0xabc", FirstTransaction: &first, LastTransaction: &last}, airdrop)
		assert.True(t, result.Eligible)
	})

	t.Run("all activity before window fails", func(t *testing.T) {
		first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		result := svc.Evaluate(&models.WalletActivity{Address: "0xabc", FirstTransaction: &first, LastTransaction: &last}, airdrop)
		assert.False(t, result.Eligible)
		require.Len(t, result.MissingRequirements, 1)
	})

	t.Run("all activity after snapshot fails", func(t *testing.T) {
		first := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
		result := svc.Evaluate(&models.WalletActivity{Address: "0xabc", FirstTransaction: &first, LastTransaction: &last}, airdrop)
		assert.False(t, result.Eligible)
	})
}

func TestEvaluate_SatisfiedWallet(t *testing.T) {
	svc := NewEligibilityService()
	value := 250.0
	airdrop := &models.Airdrop{
		ID:                "foo",
		Name:              "Foo",
		EstimatedValueUSD: &value,
		ClaimURL:          "https://foo.io/claim",
		Rules: &models.AirdropRule{
			RequiredPrograms: []string{"jupiter"},
			MinTransactions:  3,
			RequiredBridges:  []string{"wormhole"},
		},
	}
	activity := &models.WalletActivity{
		Address:           "0xabc",
		Programs:          []string{"jupiter", "drift"},
		BridgesUsed:       []string{"wormhole"},
		TransactionCounts: map[string]int{"jupiter": 4},
	}

	result := svc.Evaluate(activity, airdrop)

	assert.True(t, result.Eligible)
	assert.Equal(t, "All requirements satisfied", result.Reason)
	assert.Equal(t, "https://foo.io/claim", result.ClaimURL)
}

func TestEvaluateAll_OnlyLiveAirdrops(t *testing.T) {
	svc := NewEligibilityService()
	v1, v2 := 100.0, 50.0
	airdrops := []*models.Airdrop{
		{ID: "live-open", Name: "Live Open", Status: types.StatusLive, EstimatedValueUSD: &v1},
		{ID: "ended", Name: "Ended", Status: types.StatusEnded, EstimatedValueUSD: &v2},
		{ID: "live-gated", Name: "Live Gated", Status: types.StatusLive,
			Rules: &models.AirdropRule{RequiredPrograms: []string{"unobtainium"}}},
	}
	activity := &models.WalletActivity{Address: "0xabc"}

	results := svc.EvaluateAll(activity, airdrops)

	require.Len(t, results, 2, "non-live airdrops are skipped")
	assert.Equal(t, 100.0, TotalEstimatedValue(results), "only eligible results contribute value")
}

func TestEligibilityResultRedacted(t *testing.T) {
	r := models.EligibilityResult{
		Eligible:            false,
		Reason:              "2 requirement(s) not met",
		MissingRequirements: []string{"a", "b"},
	}

	redacted := r.Redacted()

	assert.Nil(t, redacted.MissingRequirements)
	assert.Equal(t, r.Reason, redacted.Reason)
}
