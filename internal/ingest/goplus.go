package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Kasuczi/Notification-App/internal/store"
)

// GoPlusBaseURL is the default token security API endpoint.
const GoPlusBaseURL = "https://api.gopluslabs.io/api/v1"

// chainIDs maps GeckoTerminal network prefixes to GoPlus numeric chain ids.
var chainIDs = map[string]string{
	"eth":         "1",
	"bsc":         "56",
	"polygon_pos": "137",
	"arbitrum":    "42161",
	"optimism":    "10",
	"base":        "8453",
	"avax":        "43114",
	"ftm":         "250",
	"cro":         "25",
	"zksync":      "324",
	"ton":         "201022",
}

// ChainID resolves a network prefix to the security provider's chain id,
// falling back to the prefix itself for networks the table does not know.
func ChainID(network string) string {
	if id, ok := chainIDs[network]; ok {
		return id
	}
	return network
}

// securityResponse is the token security API envelope. Per-token payloads
// stay raw until normalization because flag values arrive as strings, nulls,
// numbers or nested lists depending on the token.
type securityResponse struct {
	Code    int                        `json:"code"`
	Message string                     `json:"message"`
	Result  map[string]json.RawMessage `json:"result"`
}

// GoPlusClient looks up token security reports.
type GoPlusClient struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// NewGoPlusClient creates a new GoPlusClient.
func NewGoPlusClient(baseURL, accessToken string) *GoPlusClient {
	if baseURL == "" {
		baseURL = GoPlusBaseURL
	}

	return &GoPlusClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// TokenSecurity fetches and normalizes the security report for one token
// address on the given chain.
func (c *GoPlusClient) TokenSecurity(ctx context.Context, chainID, address string) (*store.SecurityReport, error) {
	endpoint := fmt.Sprintf("%s/token_security/%s?contract_addresses=%s", c.baseURL, chainID, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", c.accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var body securityResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	for addr, payload := range body.Result {
		if strings.EqualFold(addr, address) {
			return NormalizeSecurityReport(addr, payload)
		}
	}

	return nil, fmt.Errorf("no report for %s", address)
}

// NormalizeSecurityReport converts the provider's loosely typed per-token
// payload into the closed SecurityReport representation: every scalar field
// becomes a Flag {Absent, False, True, Unparseable}, taxes and the holders
// list are carried separately.
func NormalizeSecurityReport(address string, payload json.RawMessage) (*store.SecurityReport, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("malformed report payload: %w", err)
	}

	report := &store.SecurityReport{
		Address: address,
		Flags:   make(map[string]store.Flag, len(fields)),
	}

	for name, raw := range fields {
		switch name {
		case "buy_tax":
			report.BuyTax = scalarString(raw)
		case "sell_tax":
			report.SellTax = scalarString(raw)
		case "holders":
			report.Holders = raw
		default:
			report.Flags[name] = normalizeFlag(raw)
		}
	}

	return report, nil
}

// normalizeFlag maps one raw field value onto the FlagState sum.
func normalizeFlag(raw json.RawMessage) store.Flag {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return store.Flag{State: store.FlagAbsent}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// numbers 0/1 appear for some chains
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return store.Flag{State: store.FlagUnparseable, Raw: trimmed}
		}
		s = n.String()
	}

	switch s {
	case "0":
		return store.Flag{State: store.FlagFalse, Raw: s}
	case "1":
		return store.Flag{State: store.FlagTrue, Raw: s}
	default:
		return store.Flag{State: store.FlagUnparseable, Raw: s}
	}
}

// scalarString extracts a string-ish scalar, keeping the raw text when it is
// not a JSON string.
func scalarString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return trimmed
	}
	return s
}
