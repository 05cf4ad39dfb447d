package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/sanitize"
	"github.com/airdrop-scanner/internal/scoring"
	"github.com/airdrop-scanner/internal/types"
	"github.com/google/uuid"
)

// RSSAdapter scans project blog feeds. Feeds are public, so no credential
// is required and pacing stays polite rather than quota-driven.
type RSSAdapter struct {
	feeds    []string
	client   *pacedClient
	model    *scoring.Model
	pacing   Pacing
	minScore float64
}

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// NewRSSAdapter creates an RSS source adapter over the given feed URLs.
func NewRSSAdapter(feeds []string, pacing Pacing) *RSSAdapter {
	rps := pacing.RequestsPerSecond
	if rps <= 0 {
		rps = 2.0
	}
	return &RSSAdapter{
		feeds:    feeds,
		client:   newPacedClient("RSS", pacing.RequestTimeout, rps),
		model:    rssScoringModel(),
		pacing:   pacing,
		minScore: 0.5,
	}
}

// rssScoringModel tunes the scorer for long-form blog posts, where
// announcement vocabulary is explicit and marketing noise is common.
func rssScoringModel() *scoring.Model {
	return &scoring.Model{
		Keywords: []scoring.Keyword{
			{Phrase: "claim now", Weight: 0.95},
			{Phrase: "claim available", Weight: 0.9},
			{Phrase: "token distribution", Weight: 0.9},
			{Phrase: "airdrop", Weight: 0.8},
			{Phrase: "retroactive", Weight: 0.7},
			{Phrase: "snapshot", Weight: 0.65},
			{Phrase: "eligibility", Weight: 0.6},
			{Phrase: "governance token", Weight: 0.55},
			{Phrase: "rewards", Weight: 0.45},
		},
		NegativePhrases: []string{"partnership", "listing", "hackathon", "ama", "recap", "roadmap"},
		NegativePenalty: 0.2,
		MaxScore:        1.0,
		RecencyWindow:   7 * 24 * time.Hour,
		RecencyBoost:    0.3,
		StaleAfter:      90 * 24 * time.Hour,
		StalePenalty:    0.3,
		MultiMatchBonus3: 0.3,
		MultiMatchBonus2: 0.15,
		HotChains: map[types.ChainID]float64{
			types.ChainSolana: 0.1,
			types.ChainBase:   0.1,
		},
		BaseValueByChain: map[types.ChainID]float64{
			types.ChainSolana:   550,
			types.ChainEthereum: 500,
			types.ChainArbitrum: 450,
		},
		DefaultBaseValue: 400,
	}
}

// Source implements SourceAdapter.
func (a *RSSAdapter) Source() types.SourceType { return types.SourceRSS }

// Fetch implements SourceAdapter.
func (a *RSSAdapter) Fetch(ctx context.Context, opts FetchOptions) *models.DiscoveryResult {
	result := &models.DiscoveryResult{
		Success:   true,
		Source:    types.SourceRSS,
		ScrapedAt: time.Now(),
	}

	var mu sync.Mutex
	forEachBatch(ctx, a.feeds, a.pacing, func(ctx context.Context, feedURL string) {
		candidates, err := a.fetchFeed(ctx, feedURL, opts)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("rss %s: %v", feedURL, err))
			return
		}
		result.Airdrops = append(result.Airdrops, candidates...)
	})

	if opts.Limit > 0 && len(result.Airdrops) > opts.Limit {
		result.Airdrops = result.Airdrops[:opts.Limit]
	}

	log.Printf("[RSS] Scanned %d feeds: %d candidates, %d errors",
		len(a.feeds), len(result.Airdrops), len(result.Errors))
	return result
}

func (a *RSSAdapter) fetchFeed(ctx context.Context, feedURL string, opts FetchOptions) ([]models.ScoredCandidate, error) {
	body, err := a.client.get(ctx, feedURL, map[string]string{"Accept": "application/rss+xml, application/xml"})
	if err != nil {
		return nil, err
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var candidates []models.ScoredCandidate
	for _, item := range feed.Channel.Items {
		if c := a.scoreItem(feed.Channel.Title, item, opts); c != nil {
			candidates = append(candidates, *c)
		}
	}
	return candidates, nil
}

func (a *RSSAdapter) scoreItem(feedTitle string, item rssItem, opts FetchOptions) *models.ScoredCandidate {
	publishedAt := parsePubDate(item.PubDate)

	chains := detectChains(item.Title + " " + item.Description)
	if !opts.chainsAllowed(chains) {
		return nil
	}

	scored := a.model.Score(scoring.Input{
		Title:        item.Title,
		Body:         item.Description,
		PublishedAt:  publishedAt,
		SourceHandle: feedTitle,
		Chain:        primaryChain(chains),
	})
	if scored == nil || scored.Score < a.minScore {
		return nil
	}

	name := extractProjectName(sanitize.Clean(item.Title))
	if name == "" {
		name = sanitize.Clean(feedTitle)
	}

	return &models.ScoredCandidate{
		Name:              name,
		Description:       sanitize.Truncate(sanitize.Clean(item.Description), 500),
		Website:           item.Link,
		Chains:            chains,
		PrimaryChain:      primaryChain(chains),
		ClaimType:         scored.ClaimType,
		FrictionLevel:     scored.FrictionLevel,
		Status:            scored.Status,
		EstimatedValueUSD: scored.EstimatedValueUSD,
		Categories:        []string{"announcement"},
		Sources: []models.AirdropSource{{
			ID:         uuid.NewString(),
			Type:       types.SourceRSS,
			URL:        item.Link,
			FetchedAt:  time.Now(),
			Confidence: scored.Score,
		}},
	}
}

// parsePubDate handles the RFC1123 variants feeds actually emit. A date we
// cannot parse is treated as unknown, not as an error.
func parsePubDate(s string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
