// Package openai provides a streaming chat-completion client for
// OpenAI-compatible endpoints (the public API, Azure deployments, or a
// local Ollama in OpenAI mode).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/checkeredai/flexpolicy/pkg/completion"
	"github.com/checkeredai/flexpolicy/pkg/sse"
)

const (
	// systemPrompt steers every draft toward Ontario employment-standards
	// policy language.
	systemPrompt = "Ontario ESA policy assistant"

	// temperature is fixed low for consistent policy drafting.
	temperature = 0.2

	// doneSentinel terminates an OpenAI SSE stream.
	doneSentinel = "[DONE]"
)

// Completer implements completion.Completer against a chat/completions
// endpoint.
type Completer struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Completer.
type Option func(*Completer)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Completer) {
		c.httpClient = hc
	}
}

// WithLogger attaches a zap logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Completer) {
		c.logger = l
	}
}

// New creates a Completer for the given endpoint base URL (e.g.
// "https://api.openai.com/v1"), API key, and model.
func New(baseURL, apiKey, model string, opts ...Option) *Completer {
	c := &Completer{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			// Completions can be slow end to end even when streaming.
			Timeout: 5 * time.Minute,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// chatRequest is the OpenAI-native streaming chat request.
type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatChunk is a single streaming chunk: choices[0].delta.content carries
// the token text.
type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// errorBody is the error envelope returned on non-success statuses.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Completer) Stream(ctx context.Context, prompt string, fn completion.DeltaFunc) error {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: temperature,
		Stream:      true,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request to upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	c.logger.Debug("completion stream open",
		zap.String("model", c.model),
	)

	re := &sse.Reassembler{}
	buf := make([]byte, 4096)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, frame := range re.Push(buf[:n]) {
				ev := sse.Interpret(frame)
				if ev.Kind != sse.KindToken && ev.Kind != sse.KindQuota {
					continue
				}
				if ev.Payload == doneSentinel {
					return nil
				}

				var chunk chatChunk
				if err := json.Unmarshal([]byte(ev.Payload), &chunk); err != nil {
					c.logger.Debug("failed to parse stream chunk",
						zap.Error(err),
						zap.String("payload", ev.Payload),
					)
					continue
				}

				if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
					continue
				}
				if err := fn(chunk.Choices[0].Delta.Content); err != nil {
					return err
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading stream: %w", readErr)
		}
	}
}

// statusError maps a non-success upstream response to a StatusError,
// preferring the short error code from the JSON body.
func (c *Completer) statusError(resp *http.Response) error {
	code := http.StatusText(resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err == nil {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			switch {
			case eb.Error.Code != "":
				code = eb.Error.Code
			case eb.Error.Type != "":
				code = eb.Error.Type
			}
		}
	}

	c.logger.Debug("upstream rejected completion request",
		zap.Int("status", resp.StatusCode),
		zap.String("code", code),
	)

	return &completion.StatusError{Status: resp.StatusCode, Code: code}
}
