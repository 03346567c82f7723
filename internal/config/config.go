// Package config loads application settings from a YAML file, .env and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither an explicit path nor ANGLER_CONFIG is given
const DefaultPath = "config/config.yaml"

// Tide providers
const (
	TideProviderNOAA  = "noaa"
	TideProviderTable = "table"
)

// Config represents the structure of the configuration file
type Config struct {
	Env      string `yaml:"env"`       // development or production
	LogLevel string `yaml:"log_level"` // zerolog level name

	Database struct {
		Path string `yaml:"path"` // SQLite file
	} `yaml:"database"`

	Telegram struct {
		Token          string `yaml:"token"`
		DigestSchedule string `yaml:"digest_schedule"` // cron spec for the morning digest
		AlertSchedule  string `yaml:"alert_schedule"`  // cron spec for weather alerts and tide notices
	} `yaml:"telegram"`

	OpenAI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Maps struct {
		APIKey string `yaml:"api_key"` // Google Maps geocoding
	} `yaml:"maps"`

	Server struct {
		Port            string        `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Weather struct {
		BaseURL  string        `yaml:"base_url"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"weather"`

	Tide struct {
		Provider      string        `yaml:"provider"` // noaa or table
		BaseURL       string        `yaml:"base_url"`
		TableURL      string        `yaml:"table_url"` // must contain {station}
		TableTimezone string        `yaml:"table_timezone"`
		CacheTTL      time.Duration `yaml:"cache_ttl"`
	} `yaml:"tide"`

	Recommendations struct {
		Limit int `yaml:"limit"` // items kept per equipment type
	} `yaml:"recommendations"`

	Refresher struct {
		Schedule string `yaml:"schedule"`
	} `yaml:"refresher"`
}

// LoadConfig reads the YAML file at path, then applies .env and environment overrides
// and fills defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = getEnv("ANGLER_CONFIG", DefaultPath)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Telegram.Token = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.Token)
	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.Maps.APIKey = getEnv("GOOGLE_MAPS_API_KEY", c.Maps.APIKey)
	c.Database.Path = getEnv("ANGLER_DB_PATH", c.Database.Path)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Env = getEnv("ANGLER_ENV", c.Env)
	if v := os.Getenv("RECOMMENDATION_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Recommendations.Limit = n
		}
	}
}

func (c *Config) applyDefaults() {
	setDefault(&c.Env, "development")
	setDefault(&c.LogLevel, "info")
	setDefault(&c.Database.Path, "data/angler.db")
	setDefault(&c.Telegram.DigestSchedule, "0 6 * * *")
	setDefault(&c.Telegram.AlertSchedule, "*/15 * * * *")
	setDefault(&c.OpenAI.Model, "gpt-4o")
	setDefault(&c.Server.Port, "8080")
	setDefault(&c.Weather.BaseURL, "https://api.open-meteo.com/v1/forecast")
	setDefault(&c.Tide.Provider, TideProviderNOAA)
	setDefault(&c.Tide.BaseURL, "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter")
	setDefault(&c.Tide.TableTimezone, "UTC")
	setDefault(&c.Refresher.Schedule, "*/30 * * * *")

	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Weather.CacheTTL <= 0 {
		c.Weather.CacheTTL = 30 * time.Minute
	}
	if c.Tide.CacheTTL <= 0 {
		c.Tide.CacheTTL = 6 * time.Hour
	}
	if c.Recommendations.Limit <= 0 {
		c.Recommendations.Limit = 3
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks the configuration values. Optional credentials are only checked
// for format when present. It returns every failure joined together.
func (c *Config) Validate() error {
	var errs []error

	if c.Env != "development" && c.Env != "production" && c.Env != "test" {
		errs = append(errs, fmt.Errorf("env must be 'development', 'production', or 'test', got '%s'", c.Env))
	}
	if c.Telegram.Token != "" {
		if err := ValidateTelegramToken(c.Telegram.Token); err != nil {
			errs = append(errs, err)
		}
	}
	if c.OpenAI.APIKey != "" {
		if err := ValidateOpenAIKey(c.OpenAI.APIKey); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Maps.APIKey != "" {
		if err := ValidateMapsKey(c.Maps.APIKey); err != nil {
			errs = append(errs, err)
		}
	}

	switch c.Tide.Provider {
	case TideProviderNOAA:
	case TideProviderTable:
		if !strings.Contains(c.Tide.TableURL, "{station}") {
			errs = append(errs, errors.New("tide.table_url must contain {station} when the table provider is used"))
		}
		if _, err := time.LoadLocation(c.Tide.TableTimezone); err != nil {
			errs = append(errs, fmt.Errorf("tide.table_timezone: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("tide.provider must be '%s' or '%s', got '%s'", TideProviderNOAA, TideProviderTable, c.Tide.Provider))
	}

	for name, spec := range map[string]string{
		"telegram.digest_schedule": c.Telegram.DigestSchedule,
		"telegram.alert_schedule":  c.Telegram.AlertSchedule,
		"refresher.schedule":       c.Refresher.Schedule,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if c.Recommendations.Limit <= 0 {
		errs = append(errs, errors.New("recommendations.limit must be positive"))
	}

	return errors.Join(errs...)
}

var telegramTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]{35}$`)

// ValidateTelegramToken checks the "<bot id>:<35 character secret>" token format
func ValidateTelegramToken(token string) error {
	if !telegramTokenPattern.MatchString(token) {
		return errors.New("telegram token must look like <digits>:<35 characters>")
	}
	return nil
}

// ValidateOpenAIKey checks the OpenAI key prefix
func ValidateOpenAIKey(key string) error {
	if !strings.HasPrefix(key, "sk-") || len(key) < 20 {
		return errors.New("openai api key must start with 'sk-'")
	}
	return nil
}

// ValidateMapsKey checks the Google Maps key prefix
func ValidateMapsKey(key string) error {
	if !strings.HasPrefix(key, "AIza") {
		return errors.New("google maps api key must start with 'AIza'")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
