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

// GitHubAdapter scans release and issue feeds of a fixed repository list for
// airdrop announcements. A token is optional: unauthenticated access works
// at GitHub's reduced anonymous rate.
type GitHubAdapter struct {
	repos    []string
	token    string
	baseURL  string
	client   *pacedClient
	model    *scoring.Model
	pacing   Pacing
	minScore float64
}

// githubRelease is the subset of the releases API response we read.
type githubRelease struct {
	Name        string    `json:"name"`
	TagName     string    `json:"tag_name"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
}

// githubIssue is the subset of the issues API response we read.
type githubIssue struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
	Comments  int       `json:"comments"`
	State     string    `json:"state"`
}

// NewGitHubAdapter creates a GitHub source adapter over the given repos.
func NewGitHubAdapter(repos []string, token string, pacing Pacing) *GitHubAdapter {
	rps := 1.0
	if token != "" {
		// Authenticated requests get a far higher quota.
		rps = 5.0
	}
	if pacing.RequestsPerSecond > 0 {
		rps = pacing.RequestsPerSecond
	}

	return &GitHubAdapter{
		repos:    repos,
		token:    token,
		baseURL:  "https://api.github.com",
		client:   newPacedClient("GitHub", pacing.RequestTimeout, rps),
		model:    githubScoringModel(),
		pacing:   pacing,
		minScore: 0.45,
	}
}

// githubScoringModel tunes the shared scorer for developer-facing release
// notes: explicit claim language is rare here, so the table leans on
// distribution and snapshot vocabulary.
func githubScoringModel() *scoring.Model {
	return &scoring.Model{
		Keywords: []scoring.Keyword{
			{Phrase: "airdrop", Weight: 0.85},
			{Phrase: "token distribution", Weight: 0.9},
			{Phrase: "claim now", Weight: 0.95},
			{Phrase: "claim contract", Weight: 0.8},
			{Phrase: "merkle root", Weight: 0.75},
			{Phrase: "snapshot", Weight: 0.65},
			{Phrase: "eligibility", Weight: 0.6},
			{Phrase: "allocation", Weight: 0.55},
			{Phrase: "rewards", Weight: 0.4},
		},
		NegativePhrases: []string{"partnership", "hackathon", "bug bounty", "release candidate"},
		NegativePenalty: 0.2,
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
			types.ChainSolana:   450,
			types.ChainEthereum: 400,
			types.ChainArbitrum: 350,
		},
		DefaultBaseValue: 300,
	}
}

// Source implements SourceAdapter.
func (a *GitHubAdapter) Source() types.SourceType { return types.SourceGitHub }

// Fetch implements SourceAdapter.
func (a *GitHubAdapter) Fetch(ctx context.Context, opts FetchOptions) *models.DiscoveryResult {
	result := &models.DiscoveryResult{
		Success:   true,
		Source:    types.SourceGitHub,
		ScrapedAt: time.Now(),
	}

	var mu sync.Mutex
	collect := func(candidates []models.ScoredCandidate, errs []string) {
		mu.Lock()
		defer mu.Unlock()
		result.Airdrops = append(result.Airdrops, candidates...)
		result.Errors = append(result.Errors, errs...)
	}

	forEachBatch(ctx, a.repos, a.pacing, func(ctx context.Context, repo string) {
		candidates, errs := a.fetchRepo(ctx, repo, opts)
		collect(candidates, errs)
	})

	if opts.Limit > 0 && len(result.Airdrops) > opts.Limit {
		result.Airdrops = result.Airdrops[:opts.Limit]
	}

	log.Printf("[GitHub] Scanned %d repos: %d candidates, %d errors",
		len(a.repos), len(result.Airdrops), len(result.Errors))
	return result
}

// fetchRepo scans one repository's releases and open issues. Failures of
// either surface are recorded and the other still contributes.
func (a *GitHubAdapter) fetchRepo(ctx context.Context, repo string, opts FetchOptions) ([]models.ScoredCandidate, []string) {
	var candidates []models.ScoredCandidate
	var errs []string

	releases, err := a.fetchReleases(ctx, repo)
	if err != nil {
		errs = append(errs, fmt.Sprintf("github %s releases: %v", repo, err))
	}
	for _, rel := range releases {
		if rel.Draft || rel.Prerelease {
			continue
		}
		if c := a.scoreRelease(repo, rel, opts); c != nil {
			candidates = append(candidates, *c)
		}
	}

	issues, err := a.fetchIssues(ctx, repo)
	if err != nil {
		errs = append(errs, fmt.Sprintf("github %s issues: %v", repo, err))
	}
	for _, issue := range issues {
		if c := a.scoreIssue(repo, issue, opts); c != nil {
			candidates = append(candidates, *c)
		}
	}

	return candidates, errs
}

func (a *GitHubAdapter) fetchReleases(ctx context.Context, repo string) ([]githubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/releases?per_page=10", a.baseURL, repo)
	body, err := a.client.get(ctx, url, a.headers())
	if err != nil {
		return nil, err
	}

	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to parse releases: %w", err)
	}
	return releases, nil
}

func (a *GitHubAdapter) fetchIssues(ctx context.Context, repo string) ([]githubIssue, error) {
	url := fmt.Sprintf("%s/repos/%s/issues?state=open&sort=created&per_page=20", a.baseURL, repo)
	body, err := a.client.get(ctx, url, a.headers())
	if err != nil {
		return nil, err
	}

	var issues []githubIssue
	if err := json.Unmarshal(body, &issues); err != nil {
		return nil, fmt.Errorf("failed to parse issues: %w", err)
	}
	return issues, nil
}

func (a *GitHubAdapter) headers() map[string]string {
	h := map[string]string{"Accept": "application/vnd.github+json"}
	if a.token != "" {
		h["Authorization"] = "Bearer " + a.token
	}
	return h
}

func (a *GitHubAdapter) scoreRelease(repo string, rel githubRelease, opts FetchOptions) *models.ScoredCandidate {
	title := rel.Name
	if title == "" {
		title = rel.TagName
	}

	chains := detectChains(title + " " + rel.Body)
	if !opts.chainsAllowed(chains) {
		return nil
	}

	scored := a.model.Score(scoring.Input{
		Title:        title,
		Body:         rel.Body,
		PublishedAt:  rel.PublishedAt,
		SourceHandle: repo,
		Chain:        primaryChain(chains),
	})
	if scored == nil || scored.Score < a.minScore {
		return nil
	}
	return a.buildCandidate(repo, title, rel.Body, rel.HTMLURL, chains, scored)
}

func (a *GitHubAdapter) scoreIssue(repo string, issue githubIssue, opts FetchOptions) *models.ScoredCandidate {
	chains := detectChains(issue.Title + " " + issue.Body)
	if !opts.chainsAllowed(chains) {
		return nil
	}

	scored := a.model.Score(scoring.Input{
		Title:        issue.Title,
		Body:         issue.Body,
		PublishedAt:  issue.CreatedAt,
		Engagement:   issue.Comments,
		SourceHandle: repo,
		Chain:        primaryChain(chains),
	})
	if scored == nil || scored.Score < a.minScore {
		return nil
	}
	return a.buildCandidate(repo, issue.Title, issue.Body, issue.HTMLURL, chains, scored)
}

func (a *GitHubAdapter) buildCandidate(repo, title, body, url string, chains []types.ChainID, scored *scoring.Result) *models.ScoredCandidate {
	name := extractProjectName(sanitize.Clean(title))
	if name == "" {
		// Fall back to the repo's org segment.
		name = strings.SplitN(repo, "/", 2)[0]
	}

	return &models.ScoredCandidate{
		Name:              name,
		Description:       sanitize.Truncate(sanitize.Clean(body), 500),
		Website:           "https://github.com/" + repo,
		Chains:            chains,
		PrimaryChain:      primaryChain(chains),
		ClaimType:         scored.ClaimType,
		FrictionLevel:     scored.FrictionLevel,
		Status:            scored.Status,
		EstimatedValueUSD: scored.EstimatedValueUSD,
		Categories:        []string{"developer"},
		Sources: []models.AirdropSource{{
			ID:         uuid.NewString(),
			Type:       types.SourceGitHub,
			URL:        url,
			FetchedAt:  time.Now(),
			Confidence: scored.Score,
		}},
	}
}
