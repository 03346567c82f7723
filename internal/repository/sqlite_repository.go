// Package repository provides data access implementations
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// LocationRepository defines persistence operations for fishing spots
type LocationRepository interface {
	SaveLocation(loc entities.Location) error
	GetLocation(id string) (entities.Location, error)
	ListLocations() ([]entities.Location, error)
	DeleteLocation(id string) error
}

// WeatherRepository defines the weather cache table operations
type WeatherRepository interface {
	SaveWeather(data entities.WeatherData) error
	GetWeather(locationID string) (entities.WeatherData, error)
}

// TideRepository defines the tide cache table operations
type TideRepository interface {
	SaveTide(data entities.TideData) error
	GetTide(locationID string) (entities.TideData, error)
}

// EquipmentRepository defines persistence operations for equipment metadata
type EquipmentRepository interface {
	SaveEquipment(items []entities.EquipmentItem) error
	GetEquipment(id string) (entities.EquipmentItem, error)
	ListEquipment() ([]entities.EquipmentItem, error)
	CountEquipment() (int, error)
}

// PreferencesRepository defines persistence operations for user preferences
type PreferencesRepository interface {
	SavePreferences(prefs entities.UserPreferences) error
	GetPreferences(userID string) (entities.UserPreferences, error)
	ListPreferences() ([]entities.UserPreferences, error)
}

// Repository groups every store the application needs
type Repository interface {
	LocationRepository
	WeatherRepository
	TideRepository
	EquipmentRepository
	PreferencesRepository
	Close() error
}

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db     *sql.DB
	DBPath string
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		tide_station TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_locations_name ON locations(name);

	CREATE TABLE IF NOT EXISTS weather_cache (
		location_id TEXT PRIMARY KEY,
		temperature REAL,
		wind_speed REAL,
		wind_gust REAL,
		wind_direction INTEGER,
		cloud_cover INTEGER,
		humidity INTEGER,
		pressure REAL,
		precipitation REAL,
		weather_code INTEGER,
		is_day INTEGER,
		sunrise TEXT,
		sunset TEXT,
		observed_at TEXT,
		cached_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tide_cache (
		location_id TEXT PRIMARY KEY,
		station TEXT NOT NULL,
		events TEXT NOT NULL,
		cached_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS equipment (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		target_species TEXT NOT NULL,
		conditions TEXT NOT NULL,
		skill_level TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_equipment_type ON equipment(type);

	CREATE TABLE IF NOT EXISTS user_preferences (
		user_id TEXT PRIMARY KEY,
		target_species TEXT NOT NULL,
		favorite_equipment TEXT NOT NULL,
		experience_level TEXT NOT NULL,
		home_location_id TEXT NOT NULL DEFAULT '',
		notify_weather_alerts INTEGER NOT NULL DEFAULT 0,
		notify_tide_changes INTEGER NOT NULL DEFAULT 0,
		notify_daily_digest INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);`

// NewSQLiteRepository creates and initializes a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dbPath == "" {
		// Set default path if not specified
		dbPath = filepath.Join("data", "angler.db")
	}
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	log.Info().Str("path", dbPath).Msg("Opening database")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer keeps sqlite3 away from "database is locked" under concurrent handlers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		DBPath: dbPath,
	}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime accepts the formats that end up in the database; empty means zero time
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	// RFC3339 is what we write ourselves
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	// SQLite CURRENT_TIMESTAMP format without timezone
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC); err == nil {
		return t, nil
	}

	t, err := time.Parse("2006-01-02 15:04:05Z07:00", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp '%s': %w", s, err)
	}
	return t, nil
}

func marshalList(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
