package reportdex

import "github.com/kailas-cloud/reportdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	// ErrValidation wraps every rejected SearchParams; ValidationMessage extracts the reason.
	ErrValidation     = domain.ErrValidation
	ErrTransientStore = domain.ErrTransientStore
	ErrUnknownTopic   = domain.ErrUnknownTopic
)

// ValidationMessage returns the human-readable reason of a validation error.
func ValidationMessage(err error) (string, bool) {
	return domain.ValidationMessage(err)
}
