package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/sanitize"
	"github.com/airdrop-scanner/internal/scoring"
	"github.com/airdrop-scanner/internal/types"
	"github.com/google/uuid"
)

// SocialAdapter scans the timelines of a fixed list of project and
// aggregator accounts. The timeline API refuses anonymous access outright,
// so a missing bearer token fails the run up front with a descriptive error
// instead of attempting a call path known to 401.
type SocialAdapter struct {
	handles  []string
	bearer   string
	baseURL  string
	client   *pacedClient
	model    *scoring.Model
	pacing   Pacing
	minScore float64
}

type socialTimeline struct {
	Posts []socialPost `json:"data"`
}

type socialPost struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Metrics   struct {
		Likes   int `json:"like_count"`
		Reposts int `json:"retweet_count"`
	} `json:"public_metrics"`
}

// NewSocialAdapter creates a social-timeline source adapter.
func NewSocialAdapter(handles []string, bearer string, pacing Pacing) *SocialAdapter {
	rps := pacing.RequestsPerSecond
	if rps <= 0 {
		rps = 1.0
	}
	return &SocialAdapter{
		handles:  handles,
		bearer:   bearer,
		baseURL:  "https://api.twitter.com/2",
		client:   newPacedClient("Social", pacing.RequestTimeout, rps),
		model:    socialScoringModel(handles),
		pacing:   pacing,
		minScore: 0.5,
	}
}

// socialScoringModel tunes the scorer for short, hype-heavy posts:
// engagement is a strong corroborating signal and the followed accounts
// themselves form the trusted set.
func socialScoringModel(handles []string) *scoring.Model {
	trusted := make(map[string]bool, len(handles))
	for _, h := range handles {
		trusted[normalizeHandle(h)] = true
	}
	return &scoring.Model{
		Keywords: []scoring.Keyword{
			{Phrase: "claim now", Weight: 0.95},
			{Phrase: "airdrop is live", Weight: 0.95},
			{Phrase: "token distribution", Weight: 0.9},
			{Phrase: "airdrop", Weight: 0.8},
			{Phrase: "check eligibility", Weight: 0.75},
			{Phrase: "snapshot", Weight: 0.65},
			{Phrase: "allocation", Weight: 0.55},
			{Phrase: "rewards", Weight: 0.45},
		},
		NegativePhrases: []string{"partnership", "listing", "ama", "giveaway ends", "follow and retweet"},
		NegativePenalty: 0.25,
		MaxScore:        1.0,
		RecencyWindow:   3 * 24 * time.Hour,
		RecencyBoost:    0.3,
		StaleAfter:      30 * 24 * time.Hour,
		StalePenalty:    0.3,
		EngagementThreshold: 1000,
		EngagementBoost:     0.2,
		TrustedSources:      trusted,
		TrustedBoost:        0.15,
		MultiMatchBonus3:    0.3,
		MultiMatchBonus2:    0.15,
		HotChains: map[types.ChainID]float64{
			types.ChainSolana: 0.1,
			types.ChainBase:   0.1,
		},
		BaseValueByChain: map[types.ChainID]float64{
			types.ChainSolana:   500,
			types.ChainEthereum: 450,
			types.ChainArbitrum: 400,
		},
		DefaultBaseValue: 350,
	}
}

// Source implements SourceAdapter.
func (a *SocialAdapter) Source() types.SourceType { return types.SourceSocial }

// Fetch implements SourceAdapter.
func (a *SocialAdapter) Fetch(ctx context.Context, opts FetchOptions) *models.DiscoveryResult {
	result := &models.DiscoveryResult{
		Source:    types.SourceSocial,
		ScrapedAt: time.Now(),
	}

	if a.bearer == "" {
		result.Errors = append(result.Errors, "social adapter: bearer token not configured")
		return result
	}
	result.Success = true

	var mu sync.Mutex
	forEachBatch(ctx, a.handles, a.pacing, func(ctx context.Context, handle string) {
		candidates, err := a.fetchTimeline(ctx, handle, opts)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("social @%s: %v", handle, err))
			return
		}
		result.Airdrops = append(result.Airdrops, candidates...)
	})

	if opts.Limit > 0 && len(result.Airdrops) > opts.Limit {
		result.Airdrops = result.Airdrops[:opts.Limit]
	}

	log.Printf("[Social] Scanned %d handles: %d candidates, %d errors",
		len(a.handles), len(result.Airdrops), len(result.Errors))
	return result
}

func (a *SocialAdapter) fetchTimeline(ctx context.Context, handle string, opts FetchOptions) ([]models.ScoredCandidate, error) {
	reqURL := fmt.Sprintf("%s/tweets/search/recent?query=%s&max_results=25&tweet.fields=created_at,public_metrics",
		a.baseURL, url.QueryEscape("from:"+normalizeHandle(handle)))

	body, err := a.client.get(ctx, reqURL, map[string]string{
		"Authorization": "Bearer " + a.bearer,
	})
	if err != nil {
		return nil, err
	}

	var timeline socialTimeline
	if err := json.Unmarshal(body, &timeline); err != nil {
		return nil, fmt.Errorf("failed to parse timeline: %w", err)
	}

	var candidates []models.ScoredCandidate
	for _, post := range timeline.Posts {
		if c := a.scorePost(handle, post, opts); c != nil {
			candidates = append(candidates, *c)
		}
	}
	return candidates, nil
}

func (a *SocialAdapter) scorePost(handle string, post socialPost, opts FetchOptions) *models.ScoredCandidate {
	engagement := post.Metrics.Likes + post.Metrics.Reposts

	chains := detectChains(post.Text)
	if !opts.chainsAllowed(chains) {
		return nil
	}

	scored := a.model.Score(scoring.Input{
		Title:        post.Text,
		PublishedAt:  post.CreatedAt,
		Engagement:   engagement,
		SourceHandle: handle,
		Chain:        primaryChain(chains),
	})
	if scored == nil || scored.Score < a.minScore {
		return nil
	}

	name := extractProjectName(sanitize.Clean(post.Text))
	if name == "" {
		name = handle
	}

	postURL := fmt.Sprintf("https://twitter.com/%s/status/%s", normalizeHandle(handle), post.ID)
	return &models.ScoredCandidate{
		Name:              name,
		Description:       sanitize.Truncate(sanitize.Clean(post.Text), 280),
		TwitterURL:        "https://twitter.com/" + normalizeHandle(handle),
		Chains:            chains,
		PrimaryChain:      primaryChain(chains),
		ClaimType:         scored.ClaimType,
		FrictionLevel:     scored.FrictionLevel,
		Status:            scored.Status,
		EstimatedValueUSD: scored.EstimatedValueUSD,
		Categories:        []string{"social"},
		Engagement: &models.EngagementMetrics{
			Likes:   post.Metrics.Likes,
			Reposts: post.Metrics.Reposts,
		},
		Sources: []models.AirdropSource{{
			ID:         uuid.NewString(),
			Type:       types.SourceSocial,
			URL:        postURL,
			FetchedAt:  time.Now(),
			Confidence: scored.Score,
		}},
	}
}

func normalizeHandle(handle string) string {
	if len(handle) > 0 && handle[0] == '@' {
		return handle[1:]
	}
	return handle
}
