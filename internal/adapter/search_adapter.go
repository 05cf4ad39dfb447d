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

// SearchAdapter runs a fixed set of web-search queries against a search API.
// An API key is required; without one the run fails up front.
type SearchAdapter struct {
	queries  []string
	apiKey   string
	baseURL  string
	client   *pacedClient
	model    *scoring.Model
	pacing   Pacing
	minScore float64
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	PublishedAt string `json:"published_at"`
}

// NewSearchAdapter creates a web-search source adapter.
func NewSearchAdapter(queries []string, apiKey string, pacing Pacing) *SearchAdapter {
	rps := pacing.RequestsPerSecond
	if rps <= 0 {
		rps = 1.0
	}
	return &SearchAdapter{
		queries:  queries,
		apiKey:   apiKey,
		baseURL:  "https://api.search.brave.com/res/v1/web/search",
		client:   newPacedClient("Search", pacing.RequestTimeout, rps),
		model:    searchScoringModel(),
		pacing:   pacing,
		minScore: 0.5,
	}
}

// searchScoringModel tunes the scorer for search snippets: short text, no
// engagement signal, and a long stale window since search surfaces old pages.
func searchScoringModel() *scoring.Model {
	return &scoring.Model{
		Keywords: []scoring.Keyword{
			{Phrase: "claim now", Weight: 0.9},
			{Phrase: "claim available", Weight: 0.9},
			{Phrase: "token distribution", Weight: 0.85},
			{Phrase: "airdrop", Weight: 0.75},
			{Phrase: "snapshot", Weight: 0.6},
			{Phrase: "eligibility", Weight: 0.6},
			{Phrase: "rewards", Weight: 0.4},
		},
		NegativePhrases: []string{"top 10", "how to", "guide", "explained", "partnership", "listing"},
		NegativePenalty: 0.15,
		MaxScore:        1.0,
		RecencyWindow:   7 * 24 * time.Hour,
		RecencyBoost:    0.25,
		StaleAfter:      180 * 24 * time.Hour,
		StalePenalty:    0.3,
		MultiMatchBonus3: 0.3,
		MultiMatchBonus2: 0.15,
		HotChains: map[types.ChainID]float64{
			types.ChainSolana: 0.1,
			types.ChainBase:   0.1,
		},
		BaseValueByChain: map[types.ChainID]float64{
			types.ChainSolana:   300,
			types.ChainEthereum: 275,
			types.ChainArbitrum: 250,
		},
		DefaultBaseValue: 200,
	}
}

// Source implements SourceAdapter.
func (a *SearchAdapter) Source() types.SourceType { return types.SourceSearch }

// Fetch implements SourceAdapter.
func (a *SearchAdapter) Fetch(ctx context.Context, opts FetchOptions) *models.DiscoveryResult {
	result := &models.DiscoveryResult{
		Source:    types.SourceSearch,
		ScrapedAt: time.Now(),
	}

	if a.apiKey == "" {
		result.Errors = append(result.Errors, "search adapter: API key not configured")
		return result
	}
	result.Success = true

	var mu sync.Mutex
	forEachBatch(ctx, a.queries, a.pacing, func(ctx context.Context, query string) {
		candidates, err := a.runQuery(ctx, query, opts)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("search %q: %v", query, err))
			return
		}
		result.Airdrops = append(result.Airdrops, candidates...)
	})

	if opts.Limit > 0 && len(result.Airdrops) > opts.Limit {
		result.Airdrops = result.Airdrops[:opts.Limit]
	}

	log.Printf("[Search] Ran %d queries: %d candidates, %d errors",
		len(a.queries), len(result.Airdrops), len(result.Errors))
	return result
}

func (a *SearchAdapter) runQuery(ctx context.Context, query string, opts FetchOptions) ([]models.ScoredCandidate, error) {
	reqURL := fmt.Sprintf("%s?q=%s&count=20&freshness=pw", a.baseURL, url.QueryEscape(query))
	body, err := a.client.get(ctx, reqURL, map[string]string{
		"X-Subscription-Token": a.apiKey,
	})
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	var candidates []models.ScoredCandidate
	for _, res := range resp.Results {
		if c := a.scoreResult(res, opts); c != nil {
			candidates = append(candidates, *c)
		}
	}
	return candidates, nil
}

func (a *SearchAdapter) scoreResult(res searchResult, opts FetchOptions) *models.ScoredCandidate {
	publishedAt, _ := time.Parse(time.RFC3339, res.PublishedAt)

	chains := detectChains(res.Title + " " + res.Snippet)
	if !opts.chainsAllowed(chains) {
		return nil
	}

	scored := a.model.Score(scoring.Input{
		Title:       res.Title,
		Body:        res.Snippet,
		PublishedAt: publishedAt,
		Chain:       primaryChain(chains),
	})
	if scored == nil || scored.Score < a.minScore {
		return nil
	}

	name := extractProjectName(sanitize.Clean(res.Title))
	if name == "" {
		return nil
	}

	return &models.ScoredCandidate{
		Name:              name,
		Description:       sanitize.Truncate(sanitize.Clean(res.Snippet), 300),
		Website:           res.URL,
		Chains:            chains,
		PrimaryChain:      primaryChain(chains),
		ClaimType:         scored.ClaimType,
		FrictionLevel:     scored.FrictionLevel,
		Status:            scored.Status,
		EstimatedValueUSD: scored.EstimatedValueUSD,
		Categories:        []string{"web"},
		Sources: []models.AirdropSource{{
			ID:         uuid.NewString(),
			Type:       types.SourceSearch,
			URL:        res.URL,
			FetchedAt:  time.Now(),
			Confidence: scored.Score,
		}},
	}
}
