// Package sse provides a minimal, purpose-built decoder for the
// text/event-stream bodies produced by the FlexPolicy draft endpoint.
// It splits an arbitrarily-chunked byte stream into blank-line-delimited
// frames and classifies each frame into a token, a quota sentinel, or
// an ignorable frame.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

// Kind discriminates the outcome of interpreting a single frame.
type Kind int

const (
	// KindIgnored marks a frame without the "data:" prefix. Ignored frames
	// are skipped silently; they are not an error condition.
	KindIgnored Kind = iota

	// KindToken marks a frame carrying a regular token payload.
	KindToken

	// KindQuota marks a frame whose payload is the reserved "429" sentinel
	// signaling that the upstream is rate limited.
	KindQuota
)

const (
	// dataPrefix is the line prefix identifying frames of interest.
	dataPrefix = "data:"

	// QuotaSentinel is the reserved payload prefix meaning "quota/rate
	// limit exceeded". A payload matching or prefixed by it is never
	// forwarded as a token.
	QuotaSentinel = "429"
)

// Event is the result of interpreting one frame. It is constructed per
// frame and consumed immediately by the dispatch loop, never retained.
type Event struct {
	Kind    Kind
	Payload string
}

// Interpret classifies a complete frame.
//
// The frame is trimmed of surrounding whitespace; a frame that does not
// begin with "data:" yields KindIgnored. Otherwise the prefix is stripped
// and the remainder trimmed to obtain the payload. A payload beginning
// with the quota sentinel yields KindQuota, everything else KindToken.
func Interpret(frame string) Event {
	trimmed := strings.TrimSpace(frame)
	if !strings.HasPrefix(trimmed, dataPrefix) {
		return Event{Kind: KindIgnored}
	}

	payload := strings.TrimSpace(strings.TrimPrefix(trimmed, dataPrefix))
	if strings.HasPrefix(payload, QuotaSentinel) {
		return Event{Kind: KindQuota, Payload: payload}
	}

	return Event{Kind: KindToken, Payload: payload}
}
