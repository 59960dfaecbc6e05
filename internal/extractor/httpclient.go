package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"deedcheck/internal/config"
)

const (
	// MaxOutputTokens caps the completion size requested from every provider.
	// An extracted deed envelope is a few hundred tokens.
	MaxOutputTokens = 2048

	defaultTimeout   = 60 * time.Second
	maxResponseBytes = 4 << 20
)

// Client posts JSON requests to one provider endpoint.
type Client struct {
	provider string
	endpoint string
	headers  http.Header
	http     *http.Client
}

// NewClient builds a provider client. headers are sent with every request
// in addition to Content-Type.
func NewClient(provider, endpoint string, cfg *config.ExtractorProviderConfig, headers map[string]string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	h := make(http.Header, len(headers)+1)
	h.Set("Content-Type", "application/json")
	for k, v := range headers {
		h.Set(k, v)
	}
	return &Client{
		provider: provider,
		endpoint: endpoint,
		headers:  h,
		http:     &http.Client{Timeout: timeout},
	}
}

// Provider returns the provider name used in errors.
func (c *Client) Provider() string { return c.provider }

// PostJSON marshals payload, posts it and returns the body of a 200 answer.
// Other statuses come back as *ProviderError or *RateLimitError.
func (c *Client) PostJSON(ctx context.Context, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", c.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", c.provider, err)
	}
	req.Header = c.headers.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", c.provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", c.provider, err)
	}
	if err := CheckResponse(c.provider, resp, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

// ModelOrDefault returns the configured model, or def when none is set.
func ModelOrDefault(cfg *config.ExtractorProviderConfig, def string) string {
	if cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return def
}
