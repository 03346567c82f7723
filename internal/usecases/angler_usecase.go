// Package usecases contains the application's business logic
package usecases

import (
	"sync"
	"time"

	"github.com/abelzeko/angler-bot/internal/integration"
	"github.com/abelzeko/angler-bot/internal/integration/openai"
	"github.com/abelzeko/angler-bot/internal/repository"
)

// Default cache windows for remote data
const (
	DefaultWeatherTTL = 30 * time.Minute
	DefaultTideTTL    = 6 * time.Hour
)

// Options tune an AnglerUseCase; zero values select defaults
type Options struct {
	WeatherTTL          time.Duration
	TideTTL             time.Duration
	RecommendationLimit int
	Geocoder            integration.Geocoder // nil disables adding spots by name
	Interpreter         openai.OpenAIService // nil disables free-text queries
	Now                 func() time.Time
}

// AnglerUseCase handles business logic for fishing spots, conditions and gear
type AnglerUseCase struct {
	repo        repository.Repository
	weather     integration.WeatherProvider
	tide        integration.TideProvider
	geocoder    integration.Geocoder
	interpreter openai.OpenAIService

	weatherTTL time.Duration
	tideTTL    time.Duration
	limit      int
	now        func() time.Time

	alertMu   sync.Mutex
	lastAlert map[string]string // user id -> last alert text sent
}

// NewAnglerUseCase creates a new angler use case
func NewAnglerUseCase(repo repository.Repository, weather integration.WeatherProvider, tide integration.TideProvider, opts Options) *AnglerUseCase {
	uc := &AnglerUseCase{
		repo:        repo,
		weather:     weather,
		tide:        tide,
		geocoder:    opts.Geocoder,
		interpreter: opts.Interpreter,
		weatherTTL:  opts.WeatherTTL,
		tideTTL:     opts.TideTTL,
		limit:       opts.RecommendationLimit,
		now:         opts.Now,
		lastAlert:   make(map[string]string),
	}
	if uc.weatherTTL <= 0 {
		uc.weatherTTL = DefaultWeatherTTL
	}
	if uc.tideTTL <= 0 {
		uc.tideTTL = DefaultTideTTL
	}
	if uc.limit <= 0 {
		uc.limit = DefaultRecommendationLimit
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc
}
