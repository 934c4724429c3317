// ABOUTME: Error types returned by the dispatch API client
// ABOUTME: Splits server-reported errors from transport-level failures
package api

import (
	"fmt"
)

// APIError is a non-2xx response. Detail carries the server's `detail`
// string verbatim; there is no finer taxonomy on purpose, callers surface
// the message as-is.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Detail)
}

// IsNotFound reports whether the error is a 404 from the backend.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == 404
}

// IsUnauthorized reports whether the error is a 401 from the backend.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == 401
}

// TransportError wraps HTTP transport failures (DNS, timeouts, connection
// reset) so callers can tell "backend said no" from "never reached it".
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
