package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 6*time.Hour, cfg.Scraper.Interval)
	assert.Equal(t, 0.5, cfg.Scraper.MinConfidence)
	assert.NotEmpty(t, cfg.Sources.ForumCommunities)
	assert.NotEmpty(t, cfg.Sources.RSSFeeds)
	assert.Empty(t, cfg.Auth.AdminToken, "auth is open by default")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SCRAPER_MIN_CONFIDENCE", "0.7")
	t.Setenv("SCRAPER_INTERVAL", "2h")
	t.Setenv("FORUM_COMMUNITIES", "solana, airdrops ,")
	t.Setenv("ADMIN_TOKEN", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Scraper.MinConfidence)
	assert.Equal(t, 2*time.Hour, cfg.Scraper.Interval)
	assert.Equal(t, []string{"solana", "airdrops"}, cfg.Sources.ForumCommunities)
	assert.Equal(t, "secret", cfg.Auth.AdminToken)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SCRAPER_MIN_CONFIDENCE", "not-a-number")
	t.Setenv("SCRAPER_INTERVAL", "soon")
	t.Setenv("RATE_LIMIT_RPS", "abc")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Scraper.MinConfidence)
	assert.Equal(t, 6*time.Hour, cfg.Scraper.Interval)
	assert.Equal(t, 20, cfg.RateLimit.RequestsPerSecond)
}
