package errors

import "errors"

// FormatError represents a structurally unusable input deck
// (missing required columns or an unsupported file format).
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

// NewFormatError creates a new FormatError with the given message
func NewFormatError(message string) *FormatError {
	return &FormatError{Message: message}
}

// IsFormatError reports whether err is a FormatError (even when wrapped).
func IsFormatError(err error) bool {
	var formatErr *FormatError
	return errors.As(err, &formatErr)
}
