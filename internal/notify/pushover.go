package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PushoverBaseURL is the Pushover messages API endpoint.
const PushoverBaseURL = "https://api.pushover.net/1/messages.json"

// PushoverClient dispatches notifications through the Pushover messages API.
// Delivery is fire-and-forget from the pipelines' point of view: a failed
// send is logged by the caller and never retried.
type PushoverClient struct {
	endpoint string
	appToken string
	userKey  string
	client   *http.Client
}

// NewPushoverClient creates a new PushoverClient.
func NewPushoverClient(endpoint, appToken, userKey string) *PushoverClient {
	if endpoint == "" {
		endpoint = PushoverBaseURL
	}

	return &PushoverClient{
		endpoint: endpoint,
		appToken: appToken,
		userKey:  userKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// pushoverResponse is the delivery acknowledgment.
type pushoverResponse struct {
	Status  int      `json:"status"`
	Errors  []string `json:"errors"`
	Request string   `json:"request"`
}

// Send delivers one notification with an attached link.
func (c *PushoverClient) Send(ctx context.Context, message, title, linkURL, linkTitle string) error {
	form := url.Values{}
	form.Set("token", c.appToken)
	form.Set("user", c.userKey)
	form.Set("message", message)
	form.Set("title", title)
	form.Set("url", linkURL)
	form.Set("url_title", linkTitle)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var ack pushoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK || ack.Status != 1 {
		return fmt.Errorf("delivery rejected: status %d, errors %v", resp.StatusCode, ack.Errors)
	}

	return nil
}
