package errors

import (
	stdErrors "errors"
	"fmt"
)

// NetworkError represents a failed exchange with a remote host
// (search provider or media server). These are always recovered
// per-record and never abort a run.
type NetworkError struct {
	Message    string
	StatusCode int
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// NewNetworkError creates a NetworkError without an HTTP status.
func NewNetworkError(message string) *NetworkError {
	return &NetworkError{Message: message}
}

// NewNetworkStatusError creates a NetworkError carrying the offending HTTP status.
func NewNetworkStatusError(message string, statusCode int) *NetworkError {
	return &NetworkError{Message: message, StatusCode: statusCode}
}

// IsNetworkError reports whether err is a NetworkError (even when wrapped).
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return stdErrors.As(err, &netErr)
}
