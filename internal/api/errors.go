package api

import (
	"errors"
	"fmt"
)

// RequestError is returned when the backend answers with a non-2xx status.
// Transport failures are not wrapped in it.
type RequestError struct {
	// Op names the operation, e.g. "Nmap" or "HTTP load".
	Op string

	// StatusCode is the HTTP status returned by the backend.
	StatusCode int

	// Body is the raw response body text.
	Body string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsRequestError reports whether err is (or wraps) a *RequestError and returns it.
func IsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}
