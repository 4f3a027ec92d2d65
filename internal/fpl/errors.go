package fpl

import "fmt"

// TransientError marks a network-level failure (connection refused, timeout,
// upstream 5xx) that callers may retry. Non-transient failures — bad status
// codes, malformed URLs — are returned as plain errors.
type TransientError struct {
	Endpoint string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure on %s: %v", e.Endpoint, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
