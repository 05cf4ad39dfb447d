package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/airdrop-scanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGitHubTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/repos/good/project/releases"):
			w.Write([]byte(`[
				{"name": "TGE Release", "tag_name": "v1.0.0", "html_url": "https://github.com/good/project/releases/v1",
				 "body": "Airdrop claim contract deployed. Snapshot complete, check eligibility.",
				 "published_at": "2026-08-26T00:00:00Z"},
				{"name": "rc build", "tag_name": "v1.1.0-rc1", "prerelease": true,
				 "body": "airdrop", "html_url": "x", "published_at": "2026-08-26T00:00:00Z"}
			]`))
		case strings.HasPrefix(r.URL.Path, "/repos/good/project/issues"):
			w.Write([]byte(`[]`))
		case strings.HasPrefix(r.URL.Path, "/repos/bad/project/"):
			http.Error(w, "boom", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestGitHubAdapter_FetchScoresReleases(t *testing.T) {
	srv := newGitHubTestServer(t)
	defer srv.Close()

	a := NewGitHubAdapter([]string{"good/project"}, "", fastPacing())
	a.baseURL = srv.URL

	result := a.Fetch(context.Background(), FetchOptions{Limit: 10})

	require.True(t, result.Success)
	require.Len(t, result.Airdrops, 1, "prerelease must be skipped")

	c := result.Airdrops[0]
	assert.Equal(t, types.SourceGitHub, c.Sources[0].Type)
	assert.Greater(t, c.Confidence(), 0.45)
	assert.Equal(t, "https://github.com/good/project", c.Website)
	assert.Equal(t, types.StatusLive, c.Status)
}

func TestGitHubAdapter_TargetFailureIsIsolated(t *testing.T) {
	srv := newGitHubTestServer(t)
	defer srv.Close()

	a := NewGitHubAdapter([]string{"good/project", "bad/project"}, "", fastPacing())
	a.baseURL = srv.URL
	// Keep the test fast: one attempt, no backoff sleeping.
	a.client.retry.MaxAttempts = 1

	result := a.Fetch(context.Background(), FetchOptions{})

	assert.True(t, result.Success, "one unreachable target must not fail the run")
	assert.Len(t, result.Airdrops, 1)
	assert.NotEmpty(t, result.Errors)
}

func TestGitHubAdapter_RateLimitShortCircuits(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	a := NewGitHubAdapter([]string{"any/repo"}, "", fastPacing())
	a.baseURL = srv.URL

	result := a.Fetch(context.Background(), FetchOptions{})

	assert.Empty(t, result.Airdrops)
	assert.NotEmpty(t, result.Errors)
	// Releases and issues each hit the 403 exactly once: no retries.
	assert.Equal(t, 2, attempts)
}
