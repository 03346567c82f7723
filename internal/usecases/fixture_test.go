package usecases

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/abelzeko/angler-bot/internal/integration/openai"
	"github.com/abelzeko/angler-bot/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWeather struct{ mock.Mock }

func (m *mockWeather) FetchWeather(ctx context.Context, loc entities.Location) (entities.WeatherData, error) {
	args := m.Called(ctx, loc)
	return args.Get(0).(entities.WeatherData), args.Error(1)
}

type mockTide struct{ mock.Mock }

func (m *mockTide) FetchTide(ctx context.Context, loc entities.Location) (entities.TideData, error) {
	args := m.Called(ctx, loc)
	return args.Get(0).(entities.TideData), args.Error(1)
}

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Geocode(ctx context.Context, place string) (entities.Location, error) {
	args := m.Called(ctx, place)
	return args.Get(0).(entities.Location), args.Error(1)
}

type mockInterpreter struct{ mock.Mock }

func (m *mockInterpreter) InterpretUserQuery(ctx context.Context, msg string, known []string) (*openai.AgentResponse, error) {
	args := m.Called(ctx, msg, known)
	resp, _ := args.Get(0).(*openai.AgentResponse)
	return resp, args.Error(1)
}

// byID matches a location argument by its id
func byID(id string) interface{} {
	return mock.MatchedBy(func(loc entities.Location) bool { return loc.ID == id })
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	uc      *AnglerUseCase
	repo    *repository.SQLiteRepository
	weather *mockWeather
	tide    *mockTide
	clock   *fakeClock
}

var testStart = time.Date(2025, time.June, 14, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	repo, err := repository.NewSQLiteRepository(filepath.Join(t.TempDir(), "angler.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	f := &fixture{
		repo:    repo,
		weather: &mockWeather{},
		tide:    &mockTide{},
		clock:   &fakeClock{now: testStart},
	}
	opts.Now = f.clock.Now
	f.uc = NewAnglerUseCase(repo, f.weather, f.tide, opts)
	return f
}

func (f *fixture) addLocation(t *testing.T, id, name, station string) entities.Location {
	t.Helper()
	loc := entities.Location{ID: id, Name: name, Latitude: 41.07, Longitude: -71.86, TideStation: station, CreatedAt: testStart}
	require.NoError(t, f.repo.SaveLocation(loc))
	return loc
}

// mildWeather is a calm, partly cloudy midday reading
func mildWeather() entities.WeatherData {
	return entities.WeatherData{
		Temperature:   19,
		WindSpeed:     8,
		WindGust:      15,
		WindDirection: 200,
		CloudCover:    30,
		Precipitation: 0,
		WeatherCode:   1,
		IsDay:         true,
		Sunrise:       time.Date(2025, time.June, 14, 5, 10, 0, 0, time.UTC),
		Sunset:        time.Date(2025, time.June, 14, 20, 20, 0, 0, time.UTC),
		Timestamp:     testStart,
	}
}

// tideAround returns alternating extremes every six hours starting before testStart
func tideAround(station string) entities.TideData {
	return entities.TideData{
		Station: station,
		Events: []entities.TideEvent{
			{Type: entities.TideLow, Time: testStart.Add(-4 * time.Hour), Height: 0.1},
			{Type: entities.TideHigh, Time: testStart.Add(2 * time.Hour), Height: 1.5},
			{Type: entities.TideLow, Time: testStart.Add(8 * time.Hour), Height: 0.2},
			{Type: entities.TideHigh, Time: testStart.Add(14 * time.Hour), Height: 1.4},
		},
	}
}
