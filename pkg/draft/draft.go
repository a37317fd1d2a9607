// Package draft implements the streaming client for the FlexPolicy draft
// endpoint. It issues a single POST /draft request, decodes the chunked
// text/event-stream body into tokens, and dispatches them to caller
// callbacks as they arrive.
//
// A Stream call returns a Session immediately; the caller cancels it
// through Session.Cancel, typically wired to a wall-clock deadline with
// time.AfterFunc. The client itself imposes no deadline and never
// retries; retry policy belongs to the caller.
package draft

import (
	"net/http"

	"go.uber.org/zap"
)

// QuotaMessage is the fixed message delivered through the error callback
// when the stream carries the 429 quota sentinel.
const QuotaMessage = "quota exceeded: the drafting service is rate limited, try again later"

// TokenFunc receives one token payload per data frame, in stream order.
type TokenFunc func(token string)

// ErrorFunc receives at most one message per session. Cancellation is not
// an error and is never reported here.
type ErrorFunc func(message string)

// Request is the payload for the draft endpoint.
type Request struct {
	Prompt string `json:"prompt"`
}

// Client streams policy drafts from a FlexPolicy API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger attaches a zap logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a draft client for the given API base URL
// (e.g. "http://localhost:8000").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		// No overall timeout here: draft streams are open-ended and the
		// caller owns the deadline via Session.Cancel.
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
