// Package completion defines the upstream chat-completion interface used
// by the draft service, plus the error type that carries an upstream
// HTTP status through to the SSE error frame.
package completion

import "context"

// DeltaFunc receives one content delta per streaming chunk, in order.
// Returning an error stops the stream.
type DeltaFunc func(delta string) error

// Completer streams a chat completion for a prompt.
type Completer interface {
	// Stream generates a completion for prompt, invoking fn for each
	// content delta as it arrives. It returns once the upstream stream
	// ends, fn returns an error, or ctx is cancelled.
	Stream(ctx context.Context, prompt string, fn DeltaFunc) error
}
