package completion

import "fmt"

// StatusError is returned when the upstream completion endpoint rejects
// a request. The draft handler forwards Status and Code to the client as
// the in-band "<status>:<code>" error frame, so a 429 here becomes the
// quota sentinel on the wire.
type StatusError struct {
	// Status is the upstream HTTP status code.
	Status int

	// Code is the short machine-readable error code from the upstream
	// error body (e.g. "rate_limit_exceeded"), or the error type when no
	// code is present.
	Code string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Code)
}
