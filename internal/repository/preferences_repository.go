package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abelzeko/angler-bot/internal/entities"
)

// SavePreferences inserts or replaces a user's preferences
func (r *SQLiteRepository) SavePreferences(prefs entities.UserPreferences) error {
	species, err := marshalList(nonNil(prefs.TargetSpecies))
	if err != nil {
		return fmt.Errorf("failed to encode species: %w", err)
	}
	favorites, err := marshalList(nonNil(prefs.FavoriteEquipment))
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO user_preferences(user_id, target_species, favorite_equipment, experience_level,
			home_location_id, notify_weather_alerts, notify_tide_changes, notify_daily_digest, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		target_species=excluded.target_species,
		favorite_equipment=excluded.favorite_equipment,
		experience_level=excluded.experience_level,
		home_location_id=excluded.home_location_id,
		notify_weather_alerts=excluded.notify_weather_alerts,
		notify_tide_changes=excluded.notify_tide_changes,
		notify_daily_digest=excluded.notify_daily_digest,
		updated_at=excluded.updated_at`,
		prefs.UserID,
		species,
		favorites,
		string(prefs.ExperienceLevel),
		prefs.HomeLocationID,
		boolToInt(prefs.NotifyWeatherAlerts),
		boolToInt(prefs.NotifyTideChanges),
		boolToInt(prefs.NotifyDailyDigest),
		formatTime(prefs.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences for %s: %w", prefs.UserID, err)
	}
	return nil
}

// GetPreferences retrieves a user's stored preferences
func (r *SQLiteRepository) GetPreferences(userID string) (entities.UserPreferences, error) {
	row := r.db.QueryRow(`
		SELECT user_id, target_species, favorite_equipment, experience_level, home_location_id,
			notify_weather_alerts, notify_tide_changes, notify_daily_digest, updated_at
		FROM user_preferences WHERE user_id = ?`, userID)

	prefs, err := scanPreferences(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.UserPreferences{}, entities.ErrNotFound
	}
	if err != nil {
		return entities.UserPreferences{}, fmt.Errorf("failed to query preferences for %s: %w", userID, err)
	}
	return prefs, nil
}

// ListPreferences returns the preferences of every user
func (r *SQLiteRepository) ListPreferences() ([]entities.UserPreferences, error) {
	rows, err := r.db.Query(`
		SELECT user_id, target_species, favorite_equipment, experience_level, home_location_id,
			notify_weather_alerts, notify_tide_changes, notify_daily_digest, updated_at
		FROM user_preferences
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var result []entities.UserPreferences
	for rows.Next() {
		prefs, err := scanPreferences(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, prefs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return result, nil
}

func scanPreferences(row rowScanner) (entities.UserPreferences, error) {
	var (
		prefs                     entities.UserPreferences
		species, favorites, level string
		alerts, tides, digest     int
		updatedAt                 string
	)
	if err := row.Scan(&prefs.UserID, &species, &favorites, &level, &prefs.HomeLocationID,
		&alerts, &tides, &digest, &updatedAt); err != nil {
		return entities.UserPreferences{}, err
	}

	if err := json.Unmarshal([]byte(species), &prefs.TargetSpecies); err != nil {
		return entities.UserPreferences{}, fmt.Errorf("failed to decode species: %w", err)
	}
	if err := json.Unmarshal([]byte(favorites), &prefs.FavoriteEquipment); err != nil {
		return entities.UserPreferences{}, fmt.Errorf("failed to decode favorites: %w", err)
	}

	prefs.TargetSpecies = nonNil(prefs.TargetSpecies)
	prefs.FavoriteEquipment = nonNil(prefs.FavoriteEquipment)
	prefs.ExperienceLevel = entities.SkillLevel(level)
	prefs.NotifyWeatherAlerts = alerts == 1
	prefs.NotifyTideChanges = tides == 1
	prefs.NotifyDailyDigest = digest == 1

	t, err := parseTime(updatedAt)
	if err != nil {
		return entities.UserPreferences{}, err
	}
	prefs.UpdatedAt = t
	return prefs, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
