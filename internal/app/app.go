// Package app wires configuration, storage, providers and use cases for the binaries
package app

import (
	"fmt"

	"github.com/abelzeko/angler-bot/internal/config"
	"github.com/abelzeko/angler-bot/internal/integration"
	"github.com/abelzeko/angler-bot/internal/integration/openai"
	"github.com/abelzeko/angler-bot/internal/repository"
	"github.com/abelzeko/angler-bot/internal/usecases"
	"github.com/rs/zerolog/log"
)

// App holds the shared components of a running binary
type App struct {
	Config  *config.Config
	Repo    *repository.SQLiteRepository
	UseCase *usecases.AnglerUseCase
}

// New builds the application from cfg. Optional integrations are skipped with a
// warning when their credentials are missing.
func New(cfg *config.Config) (*App, error) {
	repo, err := repository.NewSQLiteRepository(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	tide, err := newTideProvider(cfg)
	if err != nil {
		repo.Close()
		return nil, err
	}

	opts := usecases.Options{
		WeatherTTL:          cfg.Weather.CacheTTL,
		TideTTL:             cfg.Tide.CacheTTL,
		RecommendationLimit: cfg.Recommendations.Limit,
	}

	if cfg.Maps.APIKey != "" {
		geocoder, err := integration.NewGoogleGeocoder(cfg.Maps.APIKey)
		if err != nil {
			repo.Close()
			return nil, err
		}
		opts.Geocoder = geocoder
	} else {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set, spots can only be added by coordinates")
	}

	if cfg.OpenAI.APIKey != "" {
		interpreter, err := openai.NewOpenAIService(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to initialize OpenAI service: %w", err)
		}
		opts.Interpreter = interpreter
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, free-text questions are disabled")
	}

	weather := integration.NewWeatherClient(cfg.Weather.BaseURL, nil)
	uc := usecases.NewAnglerUseCase(repo, weather, tide, opts)

	catalog, err := usecases.DefaultCatalog()
	if err != nil {
		repo.Close()
		return nil, err
	}
	if _, err := uc.SeedEquipment(catalog); err != nil {
		repo.Close()
		return nil, err
	}

	return &App{Config: cfg, Repo: repo, UseCase: uc}, nil
}

// Close releases the database
func (a *App) Close() error {
	return a.Repo.Close()
}

func newTideProvider(cfg *config.Config) (integration.TideProvider, error) {
	switch cfg.Tide.Provider {
	case config.TideProviderTable:
		scraper, err := integration.NewTideTableScraper(cfg.Tide.TableURL, cfg.Tide.TableTimezone, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tide scraper: %w", err)
		}
		log.Info().Str("url", cfg.Tide.TableURL).Msg("Using HTML tide tables")
		return scraper, nil
	default:
		log.Info().Str("url", cfg.Tide.BaseURL).Msg("Using NOAA tide predictions")
		return integration.NewNOAATideClient(cfg.Tide.BaseURL, nil), nil
	}
}

// Load reads and validates the configuration and sets up logging
func Load() (*config.Config, error) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return nil, err
	}
	config.SetupLogging(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
