package scoring

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: non-nil scores always fall inside the model's clamp range,
// whatever the input text, engagement, or publish age.
func TestScoreBoundsProperty(t *testing.T) {
	m := testModel()

	properties := gopter.NewProperties(nil)

	properties.Property("score stays within [0, MaxScore]", prop.ForAll(
		func(title string, engagement int, ageDays int) bool {
			result := m.Score(Input{
				Title:       title + " airdrop",
				Engagement:  engagement,
				PublishedAt: time.Now().Add(-time.Duration(ageDays) * 24 * time.Hour),
			})
			if result == nil {
				return true
			}
			return result.Score >= 0 && result.Score <= m.MaxScore
		},
		gen.AlphaString(),
		gen.IntRange(0, 100000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

// Property: a scam phrase anywhere in the text rejects the candidate no
// matter what else the text contains.
func TestScamGateProperty(t *testing.T) {
	m := testModel()

	properties := gopter.NewProperties(nil)

	properties.Property("scam phrase always rejects", prop.ForAll(
		func(prefix, suffix string) bool {
			result := m.Score(Input{
				Title: prefix + " airdrop claim now",
				Body:  "send funds first " + suffix,
			})
			return result == nil
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
