package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepository opens a repository backed by a temporary database file
func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test-angler.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLocationRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	created := time.Date(2025, time.May, 2, 7, 30, 0, 0, time.UTC)

	require.NoError(t, repo.SaveLocation(entities.Location{ID: "b", Name: "Sava Bridge", Latitude: 44.8, Longitude: 20.4, CreatedAt: created}))
	require.NoError(t, repo.SaveLocation(entities.Location{ID: "a", Name: "ada ciganlija", Latitude: 44.78, Longitude: 20.41, TideStation: "", CreatedAt: created}))
	require.NoError(t, repo.SaveLocation(entities.Location{ID: "c", Name: "Montauk Point", Latitude: 41.07, Longitude: -71.86, TideStation: "8510560", CreatedAt: created}))

	loc, err := repo.GetLocation("c")
	require.NoError(t, err)
	assert.Equal(t, "Montauk Point", loc.Name)
	assert.Equal(t, "8510560", loc.TideStation)
	assert.True(t, loc.CreatedAt.Equal(created))

	// Upsert keeps the id and changes the name
	require.NoError(t, repo.SaveLocation(entities.Location{ID: "b", Name: "Sava Confluence", Latitude: 44.82, Longitude: 20.44, CreatedAt: created}))

	list, err := repo.ListLocations()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"ada ciganlija", "Montauk Point", "Sava Confluence"},
		[]string{list[0].Name, list[1].Name, list[2].Name})

	_, err = repo.GetLocation("missing")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestDeleteLocationClearsCache(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.SaveLocation(entities.Location{ID: "loc-1", Name: "Pier", Latitude: 1, Longitude: 2, TideStation: "9414290", CreatedAt: now}))
	require.NoError(t, repo.SaveWeather(entities.WeatherData{LocationID: "loc-1", Temperature: 12, CachedAt: now}))
	require.NoError(t, repo.SaveTide(entities.TideData{LocationID: "loc-1", Station: "9414290", CachedAt: now}))

	require.NoError(t, repo.DeleteLocation("loc-1"))

	_, err := repo.GetWeather("loc-1")
	assert.ErrorIs(t, err, entities.ErrNotFound)
	_, err = repo.GetTide("loc-1")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteLocation("loc-1"), entities.ErrNotFound)
}

func TestWeatherCacheUpsert(t *testing.T) {
	repo := newTestRepository(t)
	first := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	data := entities.WeatherData{
		LocationID:    "loc-1",
		Temperature:   18.5,
		WindSpeed:     12.2,
		WindGust:      20.1,
		WindDirection: 270,
		CloudCover:    40,
		Humidity:      65,
		Pressure:      1013.2,
		Precipitation: 0.4,
		WeatherCode:   2,
		IsDay:         true,
		Sunrise:       first.Add(-5 * time.Hour),
		Sunset:        first.Add(9 * time.Hour),
		Timestamp:     first,
		CachedAt:      first,
	}
	require.NoError(t, repo.SaveWeather(data))

	got, err := repo.GetWeather("loc-1")
	require.NoError(t, err)
	assert.Equal(t, 18.5, got.Temperature)
	assert.Equal(t, 270, got.WindDirection)
	assert.True(t, got.IsDay)
	assert.True(t, got.Sunrise.Equal(data.Sunrise))
	assert.True(t, got.CachedAt.Equal(first))

	data.Temperature = 21
	data.CachedAt = first.Add(time.Hour)
	require.NoError(t, repo.SaveWeather(data))

	got, err = repo.GetWeather("loc-1")
	require.NoError(t, err)
	assert.Equal(t, 21.0, got.Temperature)
	assert.True(t, got.CachedAt.Equal(first.Add(time.Hour)))
}

func TestTideCacheRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	events := []entities.TideEvent{
		{Type: entities.TideHigh, Time: base.Add(3 * time.Hour), Height: 1.8},
		{Type: entities.TideLow, Time: base.Add(9 * time.Hour), Height: 0.2},
	}
	require.NoError(t, repo.SaveTide(entities.TideData{LocationID: "loc-1", Station: "8518750", Events: events, CachedAt: base}))

	got, err := repo.GetTide("loc-1")
	require.NoError(t, err)
	assert.Equal(t, "8518750", got.Station)
	require.Len(t, got.Events, 2)
	assert.Equal(t, entities.TideHigh, got.Events[0].Type)
	assert.True(t, got.Events[1].Time.Equal(events[1].Time))
	assert.True(t, got.CachedAt.Equal(base))
}

func TestEquipmentSaveAndList(t *testing.T) {
	repo := newTestRepository(t)

	n, err := repo.CountEquipment()
	require.NoError(t, err)
	assert.Zero(t, n)

	items := []entities.EquipmentItem{
		{
			ID:            "spinnerbait-white",
			Type:          entities.EquipmentLure,
			Name:          "White spinnerbait",
			TargetSpecies: []string{"bass", "pike"},
			Conditions:    entities.ConditionTags{WaterClarity: []string{"stained", "murky"}},
			SkillLevel:    entities.SkillBeginner,
		},
		{
			ID:   "mono-8lb",
			Type: entities.EquipmentLine,
			Name: "8 lb monofilament",
		},
	}
	require.NoError(t, repo.SaveEquipment(items))

	n, err = repo.CountEquipment()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	item, err := repo.GetEquipment("spinnerbait-white")
	require.NoError(t, err)
	assert.Equal(t, []string{"bass", "pike"}, item.TargetSpecies)
	assert.Equal(t, []string{"stained", "murky"}, item.Conditions.WaterClarity)
	assert.Empty(t, item.Conditions.Light)

	line, err := repo.GetEquipment("mono-8lb")
	require.NoError(t, err)
	assert.Equal(t, entities.SkillBeginner, line.SkillLevel, "empty skill level is stored as beginner")

	list, err := repo.ListEquipment()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, entities.EquipmentLine, list[0].Type)

	_, err = repo.GetEquipment("nope")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestPreferencesRoundTrip(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetPreferences("42")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	prefs := entities.UserPreferences{
		UserID:            "42",
		TargetSpecies:     []string{"trout"},
		ExperienceLevel:   entities.SkillExpert,
		HomeLocationID:    "loc-1",
		NotifyDailyDigest: true,
		UpdatedAt:         time.Now().UTC(),
	}
	require.NoError(t, repo.SavePreferences(prefs))

	got, err := repo.GetPreferences("42")
	require.NoError(t, err)
	assert.Equal(t, []string{"trout"}, got.TargetSpecies)
	assert.NotNil(t, got.FavoriteEquipment)
	assert.Empty(t, got.FavoriteEquipment)
	assert.Equal(t, entities.SkillExpert, got.ExperienceLevel)
	assert.True(t, got.NotifyDailyDigest)
	assert.False(t, got.NotifyWeatherAlerts)

	all, err := repo.ListPreferences()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNewSQLiteRepositoryCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "angler.db")

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.SaveLocation(entities.Location{ID: "x", Name: "Jetty", Latitude: 1, Longitude: 1, CreatedAt: time.Now().UTC()}))
	assert.FileExists(t, path)
}

func TestNewSQLiteRepositoryDefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())

	repo, err := NewSQLiteRepository("")
	require.NoError(t, err)
	defer repo.Close()

	assert.FileExists(t, filepath.Join("data", "angler.db"))
}
