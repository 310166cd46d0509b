package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed filter input. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrTransientStore signals a store failure (timeout, connection). Safe to retry by the caller.
	ErrTransientStore = errors.New("store unavailable")
	// ErrCacheUnavailable signals a cache tier failure. Logged, never surfaced to clients.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrUnknownTopic signals an invalidation request for a topic that does not exist.
	ErrUnknownTopic = errors.New("unknown cache topic")
)

// ValidationError carries a client-facing message for a rejected request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error with a client-facing message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ValidationMessage extracts the client-facing message from a validation error chain.
func ValidationMessage(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}
