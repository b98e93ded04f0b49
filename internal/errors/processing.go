package errors

import "errors"

// ProcessingError represents a failed image normalization. The
// downloaded file is kept as-is when this occurs.
type ProcessingError struct {
	Message string
}

func (e *ProcessingError) Error() string {
	return e.Message
}

// NewProcessingError creates a new ProcessingError with the given message
func NewProcessingError(message string) *ProcessingError {
	return &ProcessingError{Message: message}
}

// IsProcessingError reports whether err is a ProcessingError (even when wrapped).
func IsProcessingError(err error) bool {
	var procErr *ProcessingError
	return errors.As(err, &procErr)
}
