package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
)

// SaveWeather upserts the cached weather row for a location
func (r *SQLiteRepository) SaveWeather(data entities.WeatherData) error {
	_, err := r.db.Exec(`
		INSERT INTO weather_cache(location_id, temperature, wind_speed, wind_gust, wind_direction,
			cloud_cover, humidity, pressure, precipitation, weather_code, is_day,
			sunrise, sunset, observed_at, cached_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(location_id) DO UPDATE SET
		temperature=excluded.temperature,
		wind_speed=excluded.wind_speed,
		wind_gust=excluded.wind_gust,
		wind_direction=excluded.wind_direction,
		cloud_cover=excluded.cloud_cover,
		humidity=excluded.humidity,
		pressure=excluded.pressure,
		precipitation=excluded.precipitation,
		weather_code=excluded.weather_code,
		is_day=excluded.is_day,
		sunrise=excluded.sunrise,
		sunset=excluded.sunset,
		observed_at=excluded.observed_at,
		cached_at=excluded.cached_at`,
		data.LocationID,
		data.Temperature,
		data.WindSpeed,
		data.WindGust,
		data.WindDirection,
		data.CloudCover,
		data.Humidity,
		data.Pressure,
		data.Precipitation,
		data.WeatherCode,
		boolToInt(data.IsDay),
		formatTime(data.Sunrise),
		formatTime(data.Sunset),
		formatTime(data.Timestamp),
		formatTime(data.CachedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save weather for %s: %w", data.LocationID, err)
	}

	log.Debug().Str("location", data.LocationID).Msg("Cached weather data")
	return nil
}

// GetWeather returns the cached weather row for a location
func (r *SQLiteRepository) GetWeather(locationID string) (entities.WeatherData, error) {
	var (
		data                                  entities.WeatherData
		isDay                                 int
		sunrise, sunset, observedAt, cachedAt string
	)
	err := r.db.QueryRow(`
		SELECT location_id, temperature, wind_speed, wind_gust, wind_direction,
			cloud_cover, humidity, pressure, precipitation, weather_code, is_day,
			sunrise, sunset, observed_at, cached_at
		FROM weather_cache WHERE location_id = ?`, locationID).Scan(
		&data.LocationID,
		&data.Temperature,
		&data.WindSpeed,
		&data.WindGust,
		&data.WindDirection,
		&data.CloudCover,
		&data.Humidity,
		&data.Pressure,
		&data.Precipitation,
		&data.WeatherCode,
		&isDay,
		&sunrise,
		&sunset,
		&observedAt,
		&cachedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.WeatherData{}, entities.ErrNotFound
	}
	if err != nil {
		return entities.WeatherData{}, fmt.Errorf("failed to query weather for %s: %w", locationID, err)
	}

	data.IsDay = isDay == 1
	if data.Sunrise, err = parseTime(sunrise); err != nil {
		return entities.WeatherData{}, err
	}
	if data.Sunset, err = parseTime(sunset); err != nil {
		return entities.WeatherData{}, err
	}
	if data.Timestamp, err = parseTime(observedAt); err != nil {
		return entities.WeatherData{}, err
	}
	if data.CachedAt, err = parseTime(cachedAt); err != nil {
		return entities.WeatherData{}, err
	}

	return data, nil
}

// SaveTide upserts the cached tide events for a location.
// Only the raw events are stored; derived fields are recomputed on read.
func (r *SQLiteRepository) SaveTide(data entities.TideData) error {
	events, err := json.Marshal(data.Events)
	if err != nil {
		return fmt.Errorf("failed to encode tide events: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO tide_cache(location_id, station, events, cached_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(location_id) DO UPDATE SET
		station=excluded.station,
		events=excluded.events,
		cached_at=excluded.cached_at`,
		data.LocationID, data.Station, string(events), formatTime(data.CachedAt))
	if err != nil {
		return fmt.Errorf("failed to save tide for %s: %w", data.LocationID, err)
	}

	log.Debug().Str("location", data.LocationID).Int("events", len(data.Events)).Msg("Cached tide data")
	return nil
}

// GetTide returns the cached tide events for a location
func (r *SQLiteRepository) GetTide(locationID string) (entities.TideData, error) {
	var data entities.TideData
	var events, cachedAt string
	err := r.db.QueryRow(`
		SELECT location_id, station, events, cached_at
		FROM tide_cache WHERE location_id = ?`, locationID).Scan(&data.LocationID, &data.Station, &events, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.TideData{}, entities.ErrNotFound
	}
	if err != nil {
		return entities.TideData{}, fmt.Errorf("failed to query tide for %s: %w", locationID, err)
	}

	if err := json.Unmarshal([]byte(events), &data.Events); err != nil {
		return entities.TideData{}, fmt.Errorf("failed to decode tide events for %s: %w", locationID, err)
	}
	if data.CachedAt, err = parseTime(cachedAt); err != nil {
		return entities.TideData{}, err
	}
	return data, nil
}
