// Package scoring implements the weighted-keyword relevance model shared by
// every source adapter. Each adapter instantiates one Model with its own
// keyword table, negative list, and bonus rules; the scoring mechanics are
// identical across sources so tuning lives in data, not code.
package scoring

import (
	"strings"
	"time"

	"github.com/airdrop-scanner/internal/sanitize"
	"github.com/airdrop-scanner/internal/types"
)

// Keyword pairs a lexical phrase with its additive weight in [0,1].
type Keyword struct {
	Phrase string
	Weight float64
}

// Model holds the tuning tables for one adapter's scorer.
type Model struct {
	Keywords        []Keyword
	NegativePhrases []string
	NegativePenalty float64

	// ScamPhrases extends DefaultScamPhrases; a match anywhere in the text
	// rejects the candidate before any weight is summed.
	ScamPhrases []string

	// MaxScore is the clamp ceiling. Most adapters clamp to 1.0; the forum
	// adapter intentionally allows engagement bonuses to push to 1.5.
	MaxScore float64

	RecencyWindow time.Duration
	RecencyBoost  float64
	StaleAfter    time.Duration
	StalePenalty  float64

	EngagementThreshold int
	EngagementBoost     float64
	TrustedSources      map[string]bool
	TrustedBoost        float64

	MultiMatchBonus3 float64
	MultiMatchBonus2 float64

	HotChains map[types.ChainID]float64

	BaseValueByChain    map[types.ChainID]float64
	DefaultBaseValue    float64
	HighSignalValueMult float64
}

// Input is the raw material for one scoring pass.
type Input struct {
	Title        string
	Body         string
	PublishedAt  time.Time
	Engagement   int
	SourceHandle string
	Chain        types.ChainID
}

// Result carries the score and the classification derived alongside it.
type Result struct {
	Score             float64
	Matched           []string
	FrictionLevel     types.FrictionLevel
	ClaimType         types.ClaimType
	Status            types.AirdropStatus
	EstimatedValueUSD *float64
}

// DefaultScamPhrases is the fixed denylist applied by every adapter. A match
// is a hard rejection, not a score penalty.
var DefaultScamPhrases = []string{
	"send sol first",
	"send eth first",
	"send funds first",
	"send to receive",
	"private key",
	"seed phrase",
	"recovery phrase",
	"dm me your wallet",
	"validate your wallet",
	"bit.ly/",
	"tinyurl.com/",
	"cutt.ly/",
}

// Claim vocabulary used for friction and claim-type classification.
var (
	lowFrictionPhrases = []string{
		"claim now", "one click", "claim available", "instant claim", "just claim",
	}
	highFrictionPhrases = []string{
		"quest", "task", "points program", "complete missions", "leaderboard",
		"galxe", "zealy", "campaign steps",
	}
	onChainPhrases = []string{
		"on-chain", "onchain", "smart contract", "claim contract", "connect wallet",
		"merkle", "mint", "gas fee",
	}
	offChainPhrases = []string{
		"sign up", "register", "kyc", "exchange account", "email", "form",
	}
	livePhrases = []string{
		"claim now", "claim available", "claim is live", "claiming is open",
		"snapshot complete", "snapshot taken", "distribution started",
	}
	endedPhrases = []string{
		"claim ended", "claim closed", "claiming has ended", "window closed",
	}
	highSignalValuePhrases = []string{
		"snapshot complete", "snapshot taken", "claim available", "claim now",
	}
)

// Score converts raw text plus metadata into a confidence score and derived
// classification. It returns nil when there is no lexical signal at all, or
// when the scam gate fires.
func (m *Model) Score(in Input) *Result {
	text := strings.ToLower(sanitize.Clean(in.Title + " " + in.Body))
	if text == "" {
		return nil
	}

	if m.isScam(text) {
		return nil
	}

	score := 0.0
	var matched []string
	for _, kw := range m.Keywords {
		if strings.Contains(text, kw.Phrase) {
			score += kw.Weight
			matched = append(matched, kw.Phrase)
		}
	}
	// No keyword matched: no signal, drop before threshold comparison.
	if len(matched) == 0 {
		return nil
	}

	// Corroborating signal density beats single-keyword false positives.
	switch {
	case len(matched) >= 3:
		score += m.MultiMatchBonus3
	case len(matched) == 2:
		score += m.MultiMatchBonus2
	}

	for _, neg := range m.NegativePhrases {
		if strings.Contains(text, neg) {
			score -= m.NegativePenalty
		}
	}

	score += m.recencyAdjustment(in.PublishedAt)

	if m.EngagementThreshold > 0 && in.Engagement >= m.EngagementThreshold {
		score += m.EngagementBoost
	}
	if m.TrustedSources[strings.ToLower(in.SourceHandle)] {
		score += m.TrustedBoost
	}
	if boost, ok := m.HotChains[in.Chain]; ok {
		score += boost
	}

	maxScore := m.MaxScore
	if maxScore == 0 {
		maxScore = 1.0
	}
	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}

	result := &Result{
		Score:         score,
		Matched:       matched,
		FrictionLevel: classifyFriction(text),
		ClaimType:     classifyClaimType(text),
		Status:        classifyStatus(text),
	}
	result.EstimatedValueUSD = m.estimateValue(text, in.Chain, score)
	return result
}

// isScam checks the fixed denylist plus any adapter-specific additions.
func (m *Model) isScam(text string) bool {
	for _, phrase := range DefaultScamPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	for _, phrase := range m.ScamPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func (m *Model) recencyAdjustment(publishedAt time.Time) float64 {
	if publishedAt.IsZero() {
		return 0
	}
	age := time.Since(publishedAt)
	if m.RecencyWindow > 0 && age <= m.RecencyWindow {
		return m.RecencyBoost
	}
	if m.StaleAfter > 0 && age > m.StaleAfter {
		return -m.StalePenalty
	}
	return 0
}

// estimateValue produces a coarse USD estimate: a chain-specific base scaled
// by score, boosted when high-confidence signals are present.
func (m *Model) estimateValue(text string, chain types.ChainID, score float64) *float64 {
	base := m.DefaultBaseValue
	if v, ok := m.BaseValueByChain[chain]; ok {
		base = v
	}
	if base == 0 {
		return nil
	}

	value := base * score
	for _, phrase := range highSignalValuePhrases {
		if strings.Contains(text, phrase) {
			mult := m.HighSignalValueMult
			if mult == 0 {
				mult = 1.5
			}
			value *= mult
			break
		}
	}
	return &value
}

func classifyFriction(text string) types.FrictionLevel {
	lowHits := countMatches(text, lowFrictionPhrases)
	highHits := countMatches(text, highFrictionPhrases)
	switch {
	case lowHits > 0 && lowHits >= highHits:
		return types.FrictionLow
	case highHits > 0:
		return types.FrictionHigh
	default:
		return types.FrictionMedium
	}
}

func classifyClaimType(text string) types.ClaimType {
	onChain := countMatches(text, onChainPhrases) > 0
	offChain := countMatches(text, offChainPhrases) > 0
	switch {
	case onChain && offChain:
		return types.ClaimMixed
	case onChain:
		return types.ClaimOnChain
	case offChain:
		return types.ClaimOffChain
	default:
		return types.ClaimMixed
	}
}

func classifyStatus(text string) types.AirdropStatus {
	if countMatches(text, endedPhrases) > 0 {
		return types.StatusEnded
	}
	if countMatches(text, livePhrases) > 0 {
		return types.StatusLive
	}
	return types.StatusUnverified
}

func countMatches(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}
