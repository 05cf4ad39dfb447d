package scoring

import (
	"testing"
	"time"

	"github.com/airdrop-scanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testModel mirrors the tuning of a typical social-style adapter.
func testModel() *Model {
	return &Model{
		Keywords: []Keyword{
			{Phrase: "claim now", Weight: 0.95},
			{Phrase: "token distribution", Weight: 0.9},
			{Phrase: "airdrop", Weight: 0.8},
			{Phrase: "snapshot", Weight: 0.7},
			{Phrase: "eligibility", Weight: 0.6},
			{Phrase: "rewards", Weight: 0.45},
		},
		NegativePhrases: []string{"partnership", "listing", "hackathon", "ama"},
		NegativePenalty: 0.2,
		MaxScore:        1.0,
		RecencyWindow:   7 * 24 * time.Hour,
		RecencyBoost:    0.25,
		StaleAfter:      120 * 24 * time.Hour,
		StalePenalty:    0.3,
		EngagementThreshold: 1000,
		EngagementBoost:     0.15,
		TrustedSources:      map[string]bool{"jupiterexchange": true},
		TrustedBoost:        0.2,
		MultiMatchBonus3:    0.3,
		MultiMatchBonus2:    0.15,
		BaseValueByChain: map[types.ChainID]float64{
			types.ChainSolana: 500,
		},
		DefaultBaseValue: 200,
	}
}

func TestScore_TypicalLiveAnnouncement(t *testing.T) {
	m := testModel()

	result := m.Score(Input{
		Title:       "Foo Protocol Airdrop — Claim Now!",
		Body:        "Snapshot taken, check eligibility",
		PublishedAt: time.Now().Add(-2 * 24 * time.Hour),
		Engagement:  2000,
		Chain:       types.ChainSolana,
	})

	require.NotNil(t, result)
	assert.Greater(t, result.Score, 0.5, "typical live announcement should clear a 0.5 threshold")
	assert.Equal(t, types.StatusLive, result.Status)
	assert.Equal(t, types.FrictionLow, result.FrictionLevel)
	require.NotNil(t, result.EstimatedValueUSD)
	assert.Greater(t, *result.EstimatedValueUSD, 0.0)
}

func TestScore_NoKeywordMatch(t *testing.T) {
	m := testModel()

	result := m.Score(Input{
		Title: "Quarterly market update",
		Body:  "Prices moved sideways this week",
	})

	assert.Nil(t, result, "text with no lexical signal must be dropped")
}

func TestScore_ScamGatePrecedence(t *testing.T) {
	m := testModel()

	// Strong airdrop keyword plus a scam indicator: the gate wins.
	result := m.Score(Input{
		Title: "Massive airdrop claim now",
		Body:  "Send SOL first to receive airdrop",
	})

	assert.Nil(t, result, "scam phrase must reject regardless of keyword strength")
}

func TestScore_ScamGateSeedPhrase(t *testing.T) {
	m := testModel()

	result := m.Score(Input{
		Title: "Airdrop eligibility checker",
		Body:  "Enter your seed phrase to verify",
	})

	assert.Nil(t, result)
}

func TestScore_NegativeKeywordPenalty(t *testing.T) {
	m := testModel()

	withNoise := m.Score(Input{
		Title: "Airdrop rewards partnership listing hackathon",
	})
	clean := m.Score(Input{
		Title: "Airdrop rewards",
	})

	require.NotNil(t, withNoise)
	require.NotNil(t, clean)
	assert.Less(t, withNoise.Score, clean.Score, "marketing noise should be penalized")
}

func TestScore_RecencyDecay(t *testing.T) {
	m := testModel()

	// A single low-weight keyword keeps both scores inside the clamp so the
	// recency adjustment stays observable.
	fresh := m.Score(Input{
		Title:       "Rewards program announced",
		PublishedAt: time.Now().Add(-24 * time.Hour),
	})
	stale := m.Score(Input{
		Title:       "Rewards program announced",
		PublishedAt: time.Now().Add(-200 * 24 * time.Hour),
	})

	require.NotNil(t, fresh)
	require.NotNil(t, stale)
	assert.InDelta(t, 0.70, fresh.Score, 0.001)
	assert.InDelta(t, 0.15, stale.Score, 0.001)
	assert.Greater(t, fresh.Score, stale.Score)
}

func TestScore_NoTimestampNoAdjustment(t *testing.T) {
	m := testModel()

	result := m.Score(Input{Title: "airdrop"})
	require.NotNil(t, result)
	assert.InDelta(t, 0.8, result.Score, 0.001, "missing publish time should not adjust the score")
}

func TestScore_TrustedSourceBonus(t *testing.T) {
	m := testModel()

	trusted := m.Score(Input{Title: "airdrop", SourceHandle: "JupiterExchange"})
	untrusted := m.Score(Input{Title: "airdrop", SourceHandle: "randomaccount"})

	require.NotNil(t, trusted)
	require.NotNil(t, untrusted)
	assert.Greater(t, trusted.Score, untrusted.Score)
}

func TestScore_MultiKeywordBonus(t *testing.T) {
	m := testModel()

	three := m.Score(Input{Title: "airdrop snapshot eligibility"})
	one := m.Score(Input{Title: "airdrop"})

	require.NotNil(t, three)
	require.NotNil(t, one)
	assert.Len(t, three.Matched, 3)
	// 0.8+0.7+0.6+0.3 clamps to 1.0
	assert.Equal(t, 1.0, three.Score)
	assert.Len(t, one.Matched, 1)
}

func TestScore_ForumCeilingAboveOne(t *testing.T) {
	m := testModel()
	m.MaxScore = 1.5

	result := m.Score(Input{
		Title:       "airdrop claim now token distribution snapshot eligibility",
		PublishedAt: time.Now(),
		Engagement:  5000,
	})

	require.NotNil(t, result)
	assert.Greater(t, result.Score, 1.0)
	assert.LessOrEqual(t, result.Score, 1.5)
}

func TestClassifyClaimType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected types.ClaimType
	}{
		{"on-chain vocabulary", "connect wallet to the claim contract", types.ClaimOnChain},
		{"off-chain vocabulary", "sign up with your email to register", types.ClaimOffChain},
		{"both", "connect wallet then sign up with email", types.ClaimMixed},
		{"neither defaults to mixed", "token giveaway", types.ClaimMixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyClaimType(tt.text))
		})
	}
}

func TestClassifyFriction(t *testing.T) {
	assert.Equal(t, types.FrictionLow, classifyFriction("claim now in one click"))
	assert.Equal(t, types.FrictionHigh, classifyFriction("complete the quest on galxe"))
	assert.Equal(t, types.FrictionMedium, classifyFriction("token holders receive allocation"))
}

func TestClassifyStatus_EndedBeatsLive(t *testing.T) {
	// A retrospective post mentioning both signals should read as ended.
	assert.Equal(t, types.StatusEnded, classifyStatus("claiming is open no more: claim ended yesterday"))
}
