package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Kasuczi/Notification-App/internal/store"
)

// EtherscanBaseURL is the default transfer API endpoint.
const EtherscanBaseURL = "https://api.etherscan.io"

// ErrAllWalletsFailed is returned when no wallet in the list could be fetched.
var ErrAllWalletsFailed = errors.New("all wallet fetches failed")

// rawTransfer is one token transfer row as returned by the account/tokentx
// endpoint. All fields arrive as strings.
type rawTransfer struct {
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	TokenSymbol     string `json:"tokenSymbol"`
	ContractAddress string `json:"contractAddress"`
}

// transferResponse is the envelope around the transfer list. Result is kept
// raw because the provider returns a string error message in place of the
// array on failures.
type transferResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// EtherscanClient fetches current-day token transfers for a wallet list.
type EtherscanClient struct {
	baseURL string
	apiKey  string
	client  *http.Client

	// now is swappable for tests
	now func() time.Time
}

// NewEtherscanClient creates a new EtherscanClient.
func NewEtherscanClient(baseURL, apiKey string) *EtherscanClient {
	if baseURL == "" {
		baseURL = EtherscanBaseURL
	}

	return &EtherscanClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		now:     time.Now,
	}
}

// Transactions fetches and labels the current UTC day's token transfers for
// every wallet in the list. A failing wallet is logged and skipped; only when
// every wallet fails is an error returned.
func (c *EtherscanClient) Transactions(ctx context.Context, wallets []string) ([]store.TransactionRecord, error) {
	var rows []store.TransactionRecord
	failed := 0

	dayStart := c.now().UTC().Truncate(24 * time.Hour).Unix()

	for _, wallet := range wallets {
		transfers, err := c.fetchWallet(ctx, wallet)
		if err != nil {
			slog.Warn("wallet_fetch_failed", "wallet", wallet, "error", err)
			failed++
			continue
		}

		for _, t := range transfers {
			row, ok := labelTransfer(t, wallet, dayStart)
			if !ok {
				continue
			}
			rows = append(rows, row)
		}
	}

	if failed == len(wallets) && len(wallets) > 0 {
		return nil, ErrAllWalletsFailed
	}

	return rows, nil
}

// fetchWallet fetches the transfer history for one wallet, newest first.
func (c *EtherscanClient) fetchWallet(ctx context.Context, wallet string) ([]rawTransfer, error) {
	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "tokentx")
	q.Set("address", wallet)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("sort", "desc")
	q.Set("apikey", c.apiKey)

	endpoint := fmt.Sprintf("%s/api?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var body transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	var transfers []rawTransfer
	if err := json.Unmarshal(body.Result, &transfers); err != nil {
		// "No transactions found" and error cases arrive as a string result
		if body.Status == "0" && strings.Contains(body.Message, "No transactions") {
			return nil, nil
		}
		return nil, fmt.Errorf("provider error: %s", body.Message)
	}

	return transfers, nil
}

// labelTransfer converts one raw transfer into the canonical row, labeling
// the direction relative to the tracked wallet and dropping rows outside the
// current day window.
func labelTransfer(t rawTransfer, wallet string, dayStart int64) (store.TransactionRecord, bool) {
	ts, err := strconv.ParseInt(t.TimeStamp, 10, 64)
	if err != nil || ts < dayStart {
		return store.TransactionRecord{}, false
	}

	direction := "send"
	if strings.EqualFold(t.To, wallet) {
		direction = "receive"
	}

	return store.TransactionRecord{
		TokenSymbol:     t.TokenSymbol,
		ContractAddress: strings.ToLower(t.ContractAddress),
		Type:            direction,
		WalletAddress:   strings.ToLower(wallet),
		Value:           store.ParseMetric(t.Value),
		Timestamp:       ts,
	}, true
}
