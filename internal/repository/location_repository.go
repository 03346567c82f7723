package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
)

// SaveLocation inserts or updates a location
func (r *SQLiteRepository) SaveLocation(loc entities.Location) error {
	_, err := r.db.Exec(`
		INSERT INTO locations(id, name, latitude, longitude, tide_station, created_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		name=excluded.name,
		latitude=excluded.latitude,
		longitude=excluded.longitude,
		tide_station=excluded.tide_station`,
		loc.ID, loc.Name, loc.Latitude, loc.Longitude, loc.TideStation, formatTime(loc.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save location %s: %w", loc.ID, err)
	}

	log.Debug().Str("id", loc.ID).Str("name", loc.Name).Msg("Saved location")
	return nil
}

// GetLocation retrieves a location by id
func (r *SQLiteRepository) GetLocation(id string) (entities.Location, error) {
	row := r.db.QueryRow(`
		SELECT id, name, latitude, longitude, tide_station, created_at
		FROM locations WHERE id = ?`, id)

	loc, err := scanLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Location{}, entities.ErrNotFound
	}
	if err != nil {
		return entities.Location{}, fmt.Errorf("failed to query location %s: %w", id, err)
	}
	return loc, nil
}

// ListLocations returns all locations ordered by name
func (r *SQLiteRepository) ListLocations() ([]entities.Location, error) {
	rows, err := r.db.Query(`
		SELECT id, name, latitude, longitude, tide_station, created_at
		FROM locations
		ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var result []entities.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return result, nil
}

// DeleteLocation removes a location together with its cached weather and tide rows
func (r *SQLiteRepository) DeleteLocation(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete location %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return entities.ErrNotFound
	}

	for _, table := range []string{"weather_cache", "tide_cache"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE location_id = ?`, id); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to clear %s for %s: %w", table, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Str("id", id).Msg("Deleted location")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner) (entities.Location, error) {
	var loc entities.Location
	var createdAt string
	if err := row.Scan(&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.TideStation, &createdAt); err != nil {
		return entities.Location{}, err
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return entities.Location{}, err
	}
	loc.CreatedAt = t
	return loc, nil
}
