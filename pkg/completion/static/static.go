// Package static provides a canned Completer for development and tests.
package static

import (
	"context"

	"github.com/checkeredai/flexpolicy/pkg/completion"
)

// Completer emits a fixed token sequence, then returns Err (if set).
type Completer struct {
	// Tokens are the content deltas to emit, in order.
	Tokens []string

	// Err, when non-nil, is returned after the tokens have been emitted.
	// Use a *completion.StatusError to simulate an upstream rejection.
	Err error
}

func (c *Completer) Stream(ctx context.Context, _ string, fn completion.DeltaFunc) error {
	for _, tok := range c.Tokens {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(tok); err != nil {
			return err
		}
	}

	return c.Err
}
