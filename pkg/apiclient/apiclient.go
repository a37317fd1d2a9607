// Package apiclient provides a typed client for the ordinary
// request/response endpoints of the FlexPolicy API (health probe and the
// demo items round trip). Draft streaming lives in pkg/draft.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/checkeredai/flexpolicy/pkg/items"
)

// Client talks to a FlexPolicy API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the given API base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// healthResponse is the liveness probe body.
type healthResponse struct {
	Status string `json:"status"`
}

// insertResponse wraps the rows returned by POST /items.
type insertResponse struct {
	Inserted []items.Item `json:"inserted"`
}

// Health checks the liveness probe. It returns nil when the server
// reports ok.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: HTTP %d", resp.StatusCode)
	}

	var hr healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}
	if hr.Status != "ok" {
		return fmt.Errorf("health check failed: status %q", hr.Status)
	}

	return nil
}

// AddItem inserts a demo item and returns the stored row.
func (c *Client) AddItem(ctx context.Context, name string) (*items.Item, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/items", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inserting item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("inserting item: HTTP %d: %s", resp.StatusCode, string(raw))
	}

	var ir insertResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return nil, fmt.Errorf("decoding insert response: %w", err)
	}
	if len(ir.Inserted) == 0 {
		return nil, fmt.Errorf("insert returned no rows")
	}

	return &ir.Inserted[0], nil
}
