package entities

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrNoTideStation is returned when tide data is requested for a location without a station
	ErrNoTideStation = errors.New("location has no tide station")

	// ErrGeocoderUnavailable is returned when a place name cannot be resolved because no geocoder is configured
	ErrGeocoderUnavailable = errors.New("geocoding is not configured")
)

// ValidationError carries a message that is safe to show to the user
type ValidationError struct {
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
