package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/airdrop-scanner/internal/models"
)

// ScannerClient calls the external wallet-activity scanner service. The core
// never touches chain RPC itself: the scanner returns a normalized activity
// snapshot and this client just deserializes it.
type ScannerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewScannerClient creates a wallet-activity scanner client.
func NewScannerClient(baseURL string) *ScannerClient {
	return &ScannerClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether a scanner endpoint was provided.
func (c *ScannerClient) Configured() bool {
	return c.baseURL != ""
}

// Scan fetches a fresh activity snapshot for one wallet address.
func (c *ScannerClient) Scan(ctx context.Context, address string) (*models.WalletActivity, error) {
	reqURL := fmt.Sprintf("%s/v1/activity/%s", c.baseURL, url.PathEscape(strings.TrimSpace(address)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scanner request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scanner response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scanner service error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var activity models.WalletActivity
	if err := json.Unmarshal(body, &activity); err != nil {
		return nil, fmt.Errorf("failed to parse scanner response: %w", err)
	}
	if activity.Address == "" {
		activity.Address = address
	}
	return &activity, nil
}
