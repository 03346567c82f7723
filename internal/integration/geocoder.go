package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
	"googlemaps.github.io/maps"
)

// Geocoder resolves a place name into coordinates
type Geocoder interface {
	Geocode(ctx context.Context, place string) (entities.Location, error)
}

// GoogleGeocoder uses the Google Maps Geocoding API
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder creates a new GoogleGeocoder; extra options are passed to the maps client
func NewGoogleGeocoder(apiKey string, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	c, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &GoogleGeocoder{
		client: c,
	}, nil
}

// Geocode returns the best match for the place name. The returned location has no ID.
func (g *GoogleGeocoder) Geocode(ctx context.Context, place string) (entities.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: place})
	if err != nil {
		return entities.Location{}, fmt.Errorf("failed to geocode %q: %w", place, err)
	}
	if len(results) == 0 {
		return entities.Location{}, entities.NewValidationError(fmt.Sprintf("could not find a place called %q", place))
	}

	best := results[0]
	log.Info().
		Str("query", place).
		Str("match", best.FormattedAddress).
		Msg("Geocoded place name")

	return entities.Location{
		Name:      place,
		Latitude:  best.Geometry.Location.Lat,
		Longitude: best.Geometry.Location.Lng,
	}, nil
}
