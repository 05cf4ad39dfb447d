package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/airdrop-scanner/internal/sanitize"
)

// EnrichClient calls the external LLM-backed enrichment service through its
// narrow text-in/struct-out contract. The model invocation itself is the
// service's problem; this client only ships sanitized text and reads back
// the structured extraction.
type EnrichClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Enrichment is the structured extraction returned by the service.
type Enrichment struct {
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Description string   `json:"description"`
	Website     string   `json:"website"`
	TwitterURL  string   `json:"twitterUrl"`
	DiscordURL  string   `json:"discordUrl"`
	Categories  []string `json:"categories"`
	IsOngoing   bool     `json:"isOngoing"`
	Confidence  float64  `json:"confidence"`
	Reasoning   string   `json:"reasoning"`
}

// NewEnrichClient creates an enrichment service client.
func NewEnrichClient(baseURL, apiKey string) *EnrichClient {
	return &EnrichClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether an endpoint was provided. Enrichment is
// optional: an unconfigured client is skipped, not an error.
func (c *EnrichClient) Configured() bool {
	return c.baseURL != ""
}

// Enrich sends raw text and returns the structured extraction.
func (c *EnrichClient) Enrich(ctx context.Context, rawText string) (*Enrichment, error) {
	payload, err := json.Marshal(map[string]string{
		"text": sanitize.Truncate(sanitize.Clean(rawText), 4000),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode enrichment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrichment request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read enrichment response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment service error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var enrichment Enrichment
	if err := json.Unmarshal(body, &enrichment); err != nil {
		return nil, fmt.Errorf("failed to parse enrichment response: %w", err)
	}
	return &enrichment, nil
}
