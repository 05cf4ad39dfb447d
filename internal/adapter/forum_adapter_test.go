package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/airdrop-scanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forumListingJSON(createdAt time.Time) string {
	return fmt.Sprintf(`{"data": {"children": [
		{"data": {"title": "Foo Protocol airdrop live — claim now", "selftext": "Snapshot taken, check eligibility",
		          "permalink": "/r/solana/comments/abc", "url": "https://fooprotocol.io",
		          "subreddit": "solana", "score": 500, "num_comments": 120, "created_utc": %d}},
		{"data": {"title": "Free airdrop! Send SOL first to receive airdrop", "selftext": "",
		          "permalink": "/r/solana/comments/scam", "url": "https://bit.ly/x",
		          "subreddit": "solana", "score": 900, "num_comments": 10, "created_utc": %d}},
		{"data": {"title": "Weekly thread", "selftext": "", "stickied": true,
		          "permalink": "/r/solana/comments/sticky", "subreddit": "solana", "created_utc": %d}}
	]}}`, createdAt.Unix(), createdAt.Unix(), createdAt.Unix())
}

func TestForumAdapter_FetchScoresPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(forumListingJSON(time.Now().Add(-24 * time.Hour))))
	}))
	defer srv.Close()

	a := NewForumAdapter([]string{"solana"}, fastPacing())
	a.baseURL = srv.URL

	result := a.Fetch(context.Background(), FetchOptions{})

	require.True(t, result.Success)
	require.Len(t, result.Airdrops, 1, "scam post and sticky must be dropped")

	c := result.Airdrops[0]
	assert.Equal(t, "Foo Protocol", c.Name)
	assert.Equal(t, types.ChainSolana, c.PrimaryChain, "chain-specific community names the chain")
	assert.Equal(t, []types.ChainID{types.ChainSolana}, c.Chains)
	assert.Equal(t, types.SourceForum, c.Sources[0].Type)
	assert.Equal(t, "https://fooprotocol.io", c.Website)
	require.NotNil(t, c.Engagement)
	assert.Equal(t, 500, c.Engagement.Score)
}

func TestForumAdapter_ScoreCanExceedOne(t *testing.T) {
	a := NewForumAdapter(nil, fastPacing())

	c := a.scorePost(forumPost{
		Title:       "Foo Protocol airdrop live — claim now, token distribution and snapshot eligibility confirmed",
		Subreddit:   "solana",
		Score:       5000,
		NumComments: 800,
		CreatedUTC:  float64(time.Now().Unix()),
	}, FetchOptions{})

	require.NotNil(t, c)
	assert.Greater(t, c.Confidence(), 1.0)
	assert.LessOrEqual(t, c.Confidence(), 1.5)
}

func TestForumAdapter_BelowThresholdDropped(t *testing.T) {
	a := NewForumAdapter(nil, fastPacing())

	c := a.scorePost(forumPost{
		Title:      "are rewards worth it? partnership listing shill",
		Subreddit:  "randomboard",
		CreatedUTC: float64(time.Now().Add(-100 * 24 * time.Hour).Unix()),
	}, FetchOptions{})

	assert.Nil(t, c)
}
