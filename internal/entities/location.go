// Package entities contains the core domain objects for the angler-bot application
package entities

import (
	"strings"
	"time"
)

// Location represents a saved fishing spot
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	TideStation string    `json:"tide_station,omitempty"` // Empty for freshwater spots
	CreatedAt   time.Time `json:"created_at"`
}

// HasTide reports whether tide data can be requested for the location
func (l Location) HasTide() bool {
	return strings.TrimSpace(l.TideStation) != ""
}

// Validate checks the location fields and returns a user-facing error
func (l Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return NewValidationError("location name is required")
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return NewValidationError("latitude must be between -90 and 90")
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return NewValidationError("longitude must be between -180 and 180")
	}
	return nil
}
