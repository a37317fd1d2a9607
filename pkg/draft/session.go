package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/checkeredai/flexpolicy/pkg/sse"
)

// State is the lifecycle state of one streaming session.
type State int32

const (
	// StateIdle is the state before the request has been issued.
	StateIdle State = iota

	// StateReading means the response body is being consumed.
	StateReading

	// StateCompleted means the body ended normally.
	StateCompleted

	// StateCancelled means the caller (or its deadline) stopped the read.
	StateCancelled

	// StateFailed means a non-success status, a transport failure, or the
	// quota sentinel terminated the session. The error callback has fired
	// exactly once.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is one in-flight decode operation. It owns the response body
// and the accumulation buffer; terminal states are final and the body is
// released on every exit path.
type Session struct {
	cancel context.CancelFunc
	done   chan struct{}
	state  atomic.Int32
}

// Cancel requests a best-effort stop of the read loop and releases the
// transport body. It is idempotent and a no-op after the session has
// already reached a terminal state.
func (s *Session) Cancel() {
	s.cancel()
}

// Done is closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Wait blocks until the session terminates and returns the final state.
func (s *Session) Wait() State {
	<-s.done
	return s.State()
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Stream starts a draft session. It returns immediately; tokens and at
// most one error message are dispatched synchronously from the session's
// read loop, in stream order. ctx is the parent context; most callers
// pass context.Background() and rely on Session.Cancel.
func (c *Client) Stream(ctx context.Context, req Request, onToken TokenFunc, onError ErrorFunc) *Session {
	if onToken == nil {
		onToken = func(string) {}
	}
	if onError == nil {
		onError = func(string) {}
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go c.run(ctx, s, req, onToken, onError)

	return s
}

// run is the session read loop: request, reassemble, interpret, dispatch.
func (c *Client) run(ctx context.Context, s *Session, req Request, onToken TokenFunc, onError ErrorFunc) {
	defer close(s.done)
	defer s.cancel()

	body, err := json.Marshal(req)
	if err != nil {
		s.setState(StateFailed)
		onError(err.Error())
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/draft", bytes.NewReader(body))
	if err != nil {
		s.setState(StateFailed)
		onError(err.Error())
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled before the response arrived; expected, silent.
			s.setState(StateCancelled)
			return
		}
		s.setState(StateFailed)
		onError(err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.setState(StateFailed)
		onError(fmt.Sprintf("HTTP %d", resp.StatusCode))
		return
	}

	s.setState(StateReading)
	c.logger.Debug("draft stream open", zap.String("url", c.baseURL+"/draft"))

	re := &sse.Reassembler{}
	buf := make([]byte, 4096)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, frame := range re.Push(buf[:n]) {
				ev := sse.Interpret(frame)
				switch ev.Kind {
				case sse.KindToken:
					onToken(ev.Payload)
				case sse.KindQuota:
					// Terminal: report once, drop anything still buffered.
					s.setState(StateFailed)
					onError(QuotaMessage)
					c.logger.Debug("draft stream hit quota sentinel",
						zap.String("payload", ev.Payload))
					return
				case sse.KindIgnored:
					// Frame without a data line; skip and continue.
				}
			}
		}

		if readErr != nil {
			switch {
			case errors.Is(readErr, io.EOF):
				// An unterminated trailing span is dropped, not flushed.
				s.setState(StateCompleted)
				c.logger.Debug("draft stream complete",
					zap.Int("pending_bytes", re.Pending()))
			case ctx.Err() != nil:
				s.setState(StateCancelled)
				c.logger.Debug("draft stream cancelled")
			default:
				s.setState(StateFailed)
				onError(readErr.Error())
			}
			return
		}
	}
}
