package api

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/abelzeko/angler-bot/internal/repository"
	"github.com/abelzeko/angler-bot/internal/usecases"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 14, 12, 0, 0, 0, time.UTC)

type stubWeather struct {
	data entities.WeatherData
	err  error
}

func (s *stubWeather) FetchWeather(ctx context.Context, loc entities.Location) (entities.WeatherData, error) {
	return s.data, s.err
}

type stubTide struct {
	data entities.TideData
	err  error
}

func (s *stubTide) FetchTide(ctx context.Context, loc entities.Location) (entities.TideData, error) {
	if !loc.HasTide() {
		return entities.TideData{}, entities.ErrNoTideStation
	}
	return s.data, s.err
}

type stubGeocoder struct {
	err error
}

func (s *stubGeocoder) Geocode(ctx context.Context, place string) (entities.Location, error) {
	return entities.Location{Name: place, Latitude: 46.36, Longitude: 14.09}, s.err
}

type testEnv struct {
	uc      *usecases.AnglerUseCase
	repo    *repository.SQLiteRepository
	weather *stubWeather
	tide    *stubTide
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := repository.NewSQLiteRepository(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	env := &testEnv{
		repo: repo,
		weather: &stubWeather{data: entities.WeatherData{
			Temperature: 17, WindSpeed: 10, CloudCover: 20, WeatherCode: 1, IsDay: true,
			Sunrise: testNow.Add(-7 * time.Hour), Sunset: testNow.Add(8 * time.Hour), Timestamp: testNow,
		}},
		tide: &stubTide{data: entities.TideData{Events: []entities.TideEvent{
			{Type: entities.TideLow, Time: testNow.Add(-3 * time.Hour), Height: 0.1},
			{Type: entities.TideHigh, Time: testNow.Add(3 * time.Hour), Height: 1.6},
		}}},
	}
	env.uc = usecases.NewAnglerUseCase(repo, env.weather, env.tide, usecases.Options{
		Now: func() time.Time { return testNow },
	})

	catalog, err := usecases.DefaultCatalog()
	require.NoError(t, err)
	_, err = env.uc.SeedEquipment(catalog)
	require.NoError(t, err)
	return env
}

func (e *testEnv) addLocation(t *testing.T, id, name, station string) entities.Location {
	t.Helper()
	loc := entities.Location{ID: id, Name: name, Latitude: 41.07, Longitude: -71.86, TideStation: station, CreatedAt: testNow}
	require.NoError(t, e.repo.SaveLocation(loc))
	return loc
}

var errNetwork = errors.New("network unreachable")
