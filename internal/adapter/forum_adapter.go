package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/sanitize"
	"github.com/airdrop-scanner/internal/scoring"
	"github.com/airdrop-scanner/internal/types"
	"github.com/google/uuid"
)

// ForumAdapter scans subreddit new-post listings. The listings are public
// JSON, so no credential is needed, but the source throttles aggressively
// and the adapter paces at one request per two seconds.
//
// This adapter intentionally clamps scores at 1.5 rather than 1.0: heavy
// community engagement on top of a strong keyword match is allowed to push
// past the nominal ceiling before the threshold comparison. Accepted
// asymmetry with the other adapters, not a bug.
type ForumAdapter struct {
	communities []string
	baseURL     string
	client      *pacedClient
	model       *scoring.Model
	pacing      Pacing
	minScore    float64
}

type forumListing struct {
	Data struct {
		Children []struct {
			Data forumPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type forumPost struct {
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}

// trustedCommunities get a score bonus: their moderation keeps scam posts
// low relative to generic airdrop boards.
var trustedCommunities = map[string]bool{
	"solana":     true,
	"ethfinance": true,
	"defi":       true,
}

// communityChains maps chain-specific communities to their chain. Posts in
// generic boards fall back to text detection.
var communityChains = map[string]types.ChainID{
	"solana":     types.ChainSolana,
	"ethereum":   types.ChainEthereum,
	"ethfinance": types.ChainEthereum,
	"arbitrum":   types.ChainArbitrum,
	"optimism":   types.ChainOptimism,
	"base":       types.ChainBase,
	"polygon":    types.ChainPolygon,
	"0xpolygon":  types.ChainPolygon,
}

// NewForumAdapter creates a forum source adapter over the given communities.
func NewForumAdapter(communities []string, pacing Pacing) *ForumAdapter {
	rps := pacing.RequestsPerSecond
	if rps <= 0 {
		rps = 0.5
	}
	return &ForumAdapter{
		communities: communities,
		baseURL:     "https://www.reddit.com",
		client:      newPacedClient("Forum", pacing.RequestTimeout, rps),
		model:       forumScoringModel(),
		pacing:      pacing,
		minScore:    0.55,
	}
}

// forumScoringModel tunes the scorer for community posts. Upvotes plus
// comments stand in for engagement, and the ceiling is 1.5 (see type doc).
func forumScoringModel() *scoring.Model {
	return &scoring.Model{
		Keywords: []scoring.Keyword{
			{Phrase: "claim now", Weight: 0.9},
			{Phrase: "airdrop live", Weight: 0.9},
			{Phrase: "token distribution", Weight: 0.85},
			{Phrase: "airdrop", Weight: 0.75},
			{Phrase: "retroactive", Weight: 0.7},
			{Phrase: "snapshot", Weight: 0.6},
			{Phrase: "eligibility", Weight: 0.6},
			{Phrase: "confirmed", Weight: 0.5},
			{Phrase: "rewards", Weight: 0.4},
		},
		NegativePhrases: []string{"scam warning", "rug", "shill", "referral link", "partnership", "listing"},
		NegativePenalty: 0.25,
		MaxScore:        1.5,
		RecencyWindow:   7 * 24 * time.Hour,
		RecencyBoost:    0.25,
		StaleAfter:      90 * 24 * time.Hour,
		StalePenalty:    0.3,
		EngagementThreshold: 200,
		EngagementBoost:     0.25,
		TrustedSources:      trustedCommunities,
		TrustedBoost:        0.2,
		MultiMatchBonus3:    0.3,
		MultiMatchBonus2:    0.15,
		HotChains: map[types.ChainID]float64{
			types.ChainSolana: 0.1,
			types.ChainBase:   0.1,
		},
		BaseValueByChain: map[types.ChainID]float64{
			types.ChainSolana:   400,
			types.ChainEthereum: 350,
			types.ChainArbitrum: 300,
		},
		DefaultBaseValue: 250,
	}
}

// Source implements SourceAdapter.
func (a *ForumAdapter) Source() types.SourceType { return types.SourceForum }

// Fetch implements SourceAdapter.
func (a *ForumAdapter) Fetch(ctx context.Context, opts FetchOptions) *models.DiscoveryResult {
	result := &models.DiscoveryResult{
		Success:   true,
		Source:    types.SourceForum,
		ScrapedAt: time.Now(),
	}

	var mu sync.Mutex
	forEachBatch(ctx, a.communities, a.pacing, func(ctx context.Context, community string) {
		candidates, err := a.fetchCommunity(ctx, community, opts)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("forum r/%s: %v", community, err))
			return
		}
		result.Airdrops = append(result.Airdrops, candidates...)
	})

	if opts.Limit > 0 && len(result.Airdrops) > opts.Limit {
		result.Airdrops = result.Airdrops[:opts.Limit]
	}

	log.Printf("[Forum] Scanned %d communities: %d candidates, %d errors",
		len(a.communities), len(result.Airdrops), len(result.Errors))
	return result
}

func (a *ForumAdapter) fetchCommunity(ctx context.Context, community string, opts FetchOptions) ([]models.ScoredCandidate, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=25", a.baseURL, community)
	body, err := a.client.get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var listing forumListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	var candidates []models.ScoredCandidate
	for _, child := range listing.Data.Children {
		if child.Data.Stickied {
			continue
		}
		if c := a.scorePost(child.Data, opts); c != nil {
			candidates = append(candidates, *c)
		}
	}
	return candidates, nil
}

func (a *ForumAdapter) scorePost(post forumPost, opts FetchOptions) *models.ScoredCandidate {
	publishedAt := time.Unix(int64(post.CreatedUTC), 0)
	engagement := post.Score + post.NumComments

	// A chain-specific community names the chain; generic boards fall back
	// to the post text.
	var chains []types.ChainID
	if chain, ok := communityChains[strings.ToLower(post.Subreddit)]; ok {
		chains = []types.ChainID{chain}
	} else {
		chains = detectChains(post.Title + " " + post.SelfText)
	}
	if !opts.chainsAllowed(chains) {
		return nil
	}

	scored := a.model.Score(scoring.Input{
		Title:        post.Title,
		Body:         post.SelfText,
		PublishedAt:  publishedAt,
		Engagement:   engagement,
		SourceHandle: strings.ToLower(post.Subreddit),
		Chain:        primaryChain(chains),
	})
	if scored == nil || scored.Score < a.minScore {
		return nil
	}

	name := extractProjectName(sanitize.Clean(post.Title))
	if name == "" {
		return nil
	}

	website := ""
	if post.URL != "" && !strings.Contains(post.URL, "reddit.com") {
		website = post.URL
	}

	return &models.ScoredCandidate{
		Name:              name,
		Description:       sanitize.Truncate(sanitize.Clean(post.SelfText), 500),
		Website:           website,
		Chains:            chains,
		PrimaryChain:      primaryChain(chains),
		ClaimType:         scored.ClaimType,
		FrictionLevel:     scored.FrictionLevel,
		Status:            scored.Status,
		EstimatedValueUSD: scored.EstimatedValueUSD,
		Categories:        []string{"community"},
		Engagement: &models.EngagementMetrics{
			Score:    post.Score,
			Comments: post.NumComments,
		},
		Sources: []models.AirdropSource{{
			ID:         uuid.NewString(),
			Type:       types.SourceForum,
			URL:        "https://www.reddit.com" + post.Permalink,
			FetchedAt:  time.Now(),
			Confidence: scored.Score,
		}},
	}
}
