package opendota

import (
	"errors"
	"fmt"
)

// TransientError wraps a failure that is worth retrying: connection
// problems, HTTP 429 and 5xx responses.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient opendota error: %s", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is safe to retry with backoff.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// APIError is a non-retryable upstream response (bad request, not
// found, auth failure).
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("opendota %s returned status %d", e.Endpoint, e.StatusCode)
}

// MalformedMatchError signals a payload that cannot be normalized into
// a canonical match. The record is skipped, not fatal to a batch.
type MalformedMatchError struct {
	MatchID int64
	Field   string
	Reason  string
}

func (e *MalformedMatchError) Error() string {
	return fmt.Sprintf("malformed match %d: field %q %s", e.MatchID, e.Field, e.Reason)
}
