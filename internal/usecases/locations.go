package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/abelzeko/angler-bot/internal/integration"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AddLocationRequest describes a new fishing spot. Coordinates come from, in order:
// an NMEA sentence, explicit latitude/longitude, or geocoding the name.
type AddLocationRequest struct {
	Name         string   `json:"name"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	TideStation  string   `json:"tide_station,omitempty"`
	NMEASentence string   `json:"sentence,omitempty"`
}

// AddLocation validates and stores a new location
func (uc *AnglerUseCase) AddLocation(ctx context.Context, req AddLocationRequest) (entities.Location, error) {
	loc := entities.Location{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		TideStation: strings.TrimSpace(req.TideStation),
		CreatedAt:   uc.now().UTC(),
	}

	switch {
	case req.NMEASentence != "":
		lat, lon, err := integration.ParseNMEAFix(req.NMEASentence)
		if err != nil {
			return entities.Location{}, err
		}
		loc.Latitude, loc.Longitude = lat, lon

	case req.Latitude != nil && req.Longitude != nil:
		loc.Latitude, loc.Longitude = *req.Latitude, *req.Longitude

	case req.Latitude != nil || req.Longitude != nil:
		return entities.Location{}, entities.NewValidationError("both latitude and longitude are required")

	default:
		if loc.Name == "" {
			return entities.Location{}, entities.NewValidationError("location name is required")
		}
		if uc.geocoder == nil {
			return entities.Location{}, entities.ErrGeocoderUnavailable
		}
		found, err := uc.geocoder.Geocode(ctx, loc.Name)
		if err != nil {
			if entities.IsValidationError(err) {
				return entities.Location{}, err
			}
			return entities.Location{}, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		loc.Latitude, loc.Longitude = found.Latitude, found.Longitude
	}

	if err := loc.Validate(); err != nil {
		return entities.Location{}, err
	}

	if err := uc.repo.SaveLocation(loc); err != nil {
		return entities.Location{}, err
	}

	log.Info().
		Str("id", loc.ID).
		Str("name", loc.Name).
		Float64("lat", loc.Latitude).
		Float64("lon", loc.Longitude).
		Msg("Added location")
	return loc, nil
}

// ListLocations returns all saved locations
func (uc *AnglerUseCase) ListLocations() ([]entities.Location, error) {
	log.Debug().Msg("Retrieving list of locations")
	return uc.repo.ListLocations()
}

// GetLocation returns a location by id
func (uc *AnglerUseCase) GetLocation(id string) (entities.Location, error) {
	return uc.repo.GetLocation(id)
}

// DeleteLocation removes a location and its cached data
func (uc *AnglerUseCase) DeleteLocation(id string) error {
	return uc.repo.DeleteLocation(id)
}

// FindLocation resolves a user-typed reference: an id, a case-insensitive name,
// or a name prefix that matches exactly one location
func (uc *AnglerUseCase) FindLocation(query string) (entities.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return entities.Location{}, entities.NewValidationError("please specify a location")
	}

	if loc, err := uc.repo.GetLocation(query); err == nil {
		return loc, nil
	} else if !errors.Is(err, entities.ErrNotFound) {
		return entities.Location{}, err
	}

	locations, err := uc.repo.ListLocations()
	if err != nil {
		return entities.Location{}, err
	}

	var prefixed []entities.Location
	for _, loc := range locations {
		if strings.EqualFold(loc.Name, query) {
			return loc, nil
		}
		if strings.HasPrefix(strings.ToLower(loc.Name), strings.ToLower(query)) {
			prefixed = append(prefixed, loc)
		}
	}

	switch len(prefixed) {
	case 1:
		return prefixed[0], nil
	case 0:
		return entities.Location{}, fmt.Errorf("location %q: %w", query, entities.ErrNotFound)
	default:
		return entities.Location{}, entities.NewValidationError(fmt.Sprintf("%q matches %d locations, please be more specific", query, len(prefixed)))
	}
}

// LocationNames returns the names of all saved locations
func (uc *AnglerUseCase) LocationNames() ([]string, error) {
	locations, err := uc.repo.ListLocations()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(locations))
	for _, loc := range locations {
		names = append(names, loc.Name)
	}
	return names, nil
}
