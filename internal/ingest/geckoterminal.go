// Package ingest provides the external data clients and the snapshot
// normalizer/aggregator for both pipelines.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// GeckoTerminalBaseURL is the default GeckoTerminal API endpoint
	GeckoTerminalBaseURL = "https://api.geckoterminal.com/api/v2"
	// defaultHTTPTimeout bounds every external call so a hung provider
	// fails the cycle instead of wedging the loop
	defaultHTTPTimeout = 10 * time.Second
)

// RawPool is one pool record as returned by the new-pools endpoint.
type RawPool struct {
	ID         string `json:"id"`
	Attributes struct {
		Name          string `json:"name"`
		PoolCreatedAt string `json:"pool_created_at"`
		FDVUSD        string `json:"fdv_usd"`
		ReserveInUSD  string `json:"reserve_in_usd"`
		VolumeUSD     struct {
			H24 string `json:"h24"`
		} `json:"volume_usd"`
		PriceChangePercentage struct {
			H1  string `json:"h1"`
			H24 string `json:"h24"`
		} `json:"price_change_percentage"`
		Transactions struct {
			H24 struct {
				Buys    json.Number `json:"buys"`
				Buyers  json.Number `json:"buyers"`
				Sells   json.Number `json:"sells"`
				Sellers json.Number `json:"sellers"`
			} `json:"h24"`
		} `json:"transactions"`
	} `json:"attributes"`
	Relationships struct {
		BaseToken struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"base_token"`
	} `json:"relationships"`
}

// newPoolsResponse is the envelope around the new-pools list.
type newPoolsResponse struct {
	Data []RawPool `json:"data"`
}

// GeckoTerminalClient fetches new-pool snapshots per network.
type GeckoTerminalClient struct {
	baseURL string
	client  *http.Client
}

// NewGeckoTerminalClient creates a new GeckoTerminalClient.
func NewGeckoTerminalClient(baseURL string) *GeckoTerminalClient {
	if baseURL == "" {
		baseURL = GeckoTerminalBaseURL
	}

	return &GeckoTerminalClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// NewPools fetches the current new-pools snapshot for one network.
func (c *GeckoTerminalClient) NewPools(ctx context.Context, network string) ([]RawPool, error) {
	url := fmt.Sprintf("%s/networks/%s/new_pools", c.baseURL, network)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var body newPoolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return body.Data, nil
}
