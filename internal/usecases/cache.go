package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
)

// ErrUpstream marks failures of a remote source when nothing cached could be served
var ErrUpstream = errors.New("remote data source unavailable")

// GetWeather returns weather for the location, served from cache while it is younger
// than the TTL. When the remote fetch fails an expired cache entry is returned as stale.
func (uc *AnglerUseCase) GetWeather(ctx context.Context, loc entities.Location) (entities.WeatherResult, error) {
	now := uc.now()

	cached, err := uc.repo.GetWeather(loc.ID)
	hasCached := err == nil
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		log.Warn().Err(err).Str("location", loc.ID).Msg("Failed to read weather cache, fetching fresh data")
	}

	if hasCached && now.Sub(cached.CachedAt) < uc.weatherTTL {
		log.Debug().Str("location", loc.Name).Time("cached_at", cached.CachedAt).Msg("Using cached weather")
		return entities.WeatherResult{Data: cached, FromCache: true}, nil
	}

	fresh, err := uc.weather.FetchWeather(ctx, loc)
	if err != nil {
		if hasCached {
			log.Warn().Err(err).Str("location", loc.Name).Msg("Weather fetch failed, serving stale cache")
			return entities.WeatherResult{Data: cached, FromCache: true, Stale: true}, nil
		}
		return entities.WeatherResult{}, fmt.Errorf("%w: weather for %s: %w", ErrUpstream, loc.Name, err)
	}

	fresh.LocationID = loc.ID
	fresh.CachedAt = now
	if err := uc.repo.SaveWeather(fresh); err != nil {
		log.Error().Err(err).Str("location", loc.ID).Msg("Failed to cache weather")
	}
	return entities.WeatherResult{Data: fresh}, nil
}

// GetTide returns tide data for the location with the same cache rules as GetWeather.
// The derived state is recomputed for the current time on every call.
func (uc *AnglerUseCase) GetTide(ctx context.Context, loc entities.Location) (entities.TideResult, error) {
	if !loc.HasTide() {
		return entities.TideResult{}, entities.ErrNoTideStation
	}
	now := uc.now()

	cached, err := uc.repo.GetTide(loc.ID)
	// A station change invalidates the cached events
	hasCached := err == nil && cached.Station == loc.TideStation
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		log.Warn().Err(err).Str("location", loc.ID).Msg("Failed to read tide cache, fetching fresh data")
	}

	if hasCached && now.Sub(cached.CachedAt) < uc.tideTTL {
		log.Debug().Str("location", loc.Name).Time("cached_at", cached.CachedAt).Msg("Using cached tide")
		return entities.TideResult{Data: cached.Derive(now), FromCache: true}, nil
	}

	fresh, err := uc.tide.FetchTide(ctx, loc)
	if err != nil {
		if hasCached {
			log.Warn().Err(err).Str("location", loc.Name).Msg("Tide fetch failed, serving stale cache")
			return entities.TideResult{Data: cached.Derive(now), FromCache: true, Stale: true}, nil
		}
		return entities.TideResult{}, fmt.Errorf("%w: tide for %s: %w", ErrUpstream, loc.Name, err)
	}

	fresh.LocationID = loc.ID
	fresh.Station = loc.TideStation
	fresh.CachedAt = now
	if err := uc.repo.SaveTide(fresh); err != nil {
		log.Error().Err(err).Str("location", loc.ID).Msg("Failed to cache tide")
	}
	return entities.TideResult{Data: fresh.Derive(now)}, nil
}

// RefreshLocation fetches fresh weather and tide data for one location and stores it
func (uc *AnglerUseCase) RefreshLocation(ctx context.Context, loc entities.Location) error {
	now := uc.now()
	var errs []error

	weather, err := uc.weather.FetchWeather(ctx, loc)
	if err != nil {
		errs = append(errs, fmt.Errorf("weather: %w", err))
	} else {
		weather.LocationID = loc.ID
		weather.CachedAt = now
		if err := uc.repo.SaveWeather(weather); err != nil {
			errs = append(errs, err)
		}
	}

	if loc.HasTide() {
		tide, err := uc.tide.FetchTide(ctx, loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("tide: %w", err))
		} else {
			tide.LocationID = loc.ID
			tide.Station = loc.TideStation
			tide.CachedAt = now
			if err := uc.repo.SaveTide(tide); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// RefreshAll refreshes every stored location, continuing past individual failures
func (uc *AnglerUseCase) RefreshAll(ctx context.Context) error {
	log.Info().Msg("Starting conditions refresh process...")

	locations, err := uc.repo.ListLocations()
	if err != nil {
		return fmt.Errorf("failed to list locations: %w", err)
	}

	var errs []error
	refreshed := 0
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := uc.RefreshLocation(ctx, loc); err != nil {
			log.Warn().Err(err).Str("location", loc.Name).Msg("Failed to refresh location")
			errs = append(errs, fmt.Errorf("%s: %w", loc.Name, err))
			continue
		}
		refreshed++
	}

	log.Info().
		Int("refreshed", refreshed).
		Int("failed", len(errs)).
		Int("total", len(locations)).
		Msg("Conditions refresh finished")
	return errors.Join(errs...)
}
