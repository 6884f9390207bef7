package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps transport-level failures (no response at all).
	ErrUnavailable = errors.New("server unavailable")

	// ErrRemoteFailure covers a non-success HTTP status or success=false in
	// the response body. For retry purposes it is indistinguishable from
	// ErrUnavailable; the split exists only for logging.
	ErrRemoteFailure = errors.New("remote call failed")
)

// DecodeError reports a response body that did not match the expected schema.
// It replaces silently-defaulted zero values with a typed failure at the
// network boundary.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
