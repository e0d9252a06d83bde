// Package payment implements the hosted-checkout integration.  The
// provider exposes a REST endpoint that returns a redirect URL; we never
// touch card details ourselves.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	liveBase    = "https://payment.intasend.com/api/v1"
	sandboxBase = "https://sandbox.intasend.com/api/v1"
)

// Client creates hosted checkout sessions.
type Client struct {
	secret      string
	publishable string
	base        string
	http        *http.Client
}

// NewClient builds a checkout client.  test selects the sandbox
// environment.  An empty secret yields a nil client; handlers treat
// that as "payments not configured".
func NewClient(secret, publishable string, test bool) *Client {
	if secret == "" {
		return nil
	}
	base := liveBase
	if test {
		base = sandboxBase
	}
	return &Client{
		secret:      secret,
		publishable: publishable,
		base:        base,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

// CheckoutRequest is the payload sent to the provider.
type CheckoutRequest struct {
	PublicKey   string         `json:"public_key,omitempty"`
	Amount      int            `json:"amount"`
	Currency    string         `json:"currency"`
	Description string         `json:"narrative,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Checkout is the normalized result of a checkout creation.
type Checkout struct {
	URL string
	Ref string
	Raw map[string]any
}

// CreateCheckout posts a checkout session and extracts the redirect URL
// and payment reference.  Providers have shipped several response
// shapes over time, so extraction probes multiple keys at the top level
// and under "data".
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if req.PublicKey == "" {
		req.PublicKey = c.publishable
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/checkout/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("checkout API returned %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	out := &Checkout{
		URL: extractString(raw, "url", "checkout_url", "payment_url", "redirect_url"),
		Ref: extractString(raw, "ref", "reference", "id", "invoice_id"),
		Raw: raw,
	}
	if out.URL == "" {
		return nil, fmt.Errorf("checkout response had no redirect URL")
	}
	return out, nil
}

// extractString probes keys at the top level and then inside a nested
// "data" object, returning the first string hit.
func extractString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	if data, ok := m["data"].(map[string]any); ok {
		for _, k := range keys {
			if s, ok := data[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
