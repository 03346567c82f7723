package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/abelzeko/angler-bot/internal/usecases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["error"]
}

func TestHealth(t *testing.T) {
	h := NewHTTPServer(newTestEnv(t).uc).Router()
	rec := doRequest(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLocationEndpoints(t *testing.T) {
	h := NewHTTPServer(newTestEnv(t).uc).Router()

	rec := doRequest(t, h, http.MethodGet, "/api/locations", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doRequest(t, h, http.MethodPost, "/api/locations", map[string]any{
		"name": "Montauk Point", "latitude": 41.07, "longitude": -71.86, "tide_station": "8510560",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[entities.Location](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "8510560", created.TideStation)

	rec = doRequest(t, h, http.MethodGet, "/api/locations/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/locations", map[string]any{"name": "Bad", "latitude": 120, "longitude": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "latitude")

	rec = doRequest(t, h, http.MethodPost, "/api/locations", map[string]any{"name": "Somewhere"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no geocoder configured")

	rec = doRequest(t, h, http.MethodPost, "/api/locations", map[string]any{"nonsense": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/locations/nmea", map[string]any{
		"name": "Boat ramp", "sentence": "$GPRMC,220516,A,5133.82,N,00042.24,W,173.8,231.8,130694,004.2,W*70",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.InDelta(t, 51.5637, decode[entities.Location](t, rec).Latitude, 1e-3)

	rec = doRequest(t, h, http.MethodPost, "/api/locations/nmea", map[string]any{"name": "No fix"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/locations", nil)
	assert.Len(t, decode[[]entities.Location](t, rec), 2)

	rec = doRequest(t, h, http.MethodDelete, "/api/locations/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/locations/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", errorMessage(t, rec))
}

func TestAddLocationGeocoderFailure(t *testing.T) {
	env := newTestEnv(t)
	geo := &stubGeocoder{err: errNetwork}
	uc := usecases.NewAnglerUseCase(env.repo, env.weather, env.tide, usecases.Options{
		Geocoder: geo,
		Now:      func() time.Time { return testNow },
	})
	h := NewHTTPServer(uc).Router()

	rec := doRequest(t, h, http.MethodPost, "/api/locations", map[string]any{"name": "Lake Bled"})
	assert.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
	assert.Equal(t, "remote data source unavailable", errorMessage(t, rec))

	geo.err = nil
	rec = doRequest(t, h, http.MethodPost, "/api/locations", map[string]any{"name": "Lake Bled"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.InDelta(t, 46.36, decode[entities.Location](t, rec).Latitude, 1e-9)
}

func TestWeatherAndTideEndpoints(t *testing.T) {
	env := newTestEnv(t)
	h := NewHTTPServer(env.uc).Router()
	env.addLocation(t, "sea", "Montauk", "8510560")
	env.addLocation(t, "lake", "Lake Bled", "")

	rec := doRequest(t, h, http.MethodGet, "/api/locations/sea/weather", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	weather := decode[entities.WeatherResult](t, rec)
	assert.False(t, weather.FromCache)
	assert.Equal(t, 17.0, weather.Data.Temperature)

	rec = doRequest(t, h, http.MethodGet, "/api/locations/sea/weather", nil)
	assert.True(t, decode[entities.WeatherResult](t, rec).FromCache)

	rec = doRequest(t, h, http.MethodGet, "/api/locations/sea/tide", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tide := decode[entities.TideResult](t, rec)
	assert.Equal(t, entities.TideRising, tide.Data.Type)

	rec = doRequest(t, h, http.MethodGet, "/api/locations/lake/tide", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	env.weather.err = errNetwork
	rec = doRequest(t, h, http.MethodGet, "/api/locations/lake/weather", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/locations/missing/weather", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConditionsAndRecommendations(t *testing.T) {
	env := newTestEnv(t)
	h := NewHTTPServer(env.uc).Router()
	env.addLocation(t, "sea", "Montauk", "8510560")

	rec := doRequest(t, h, http.MethodGet, "/api/locations/sea/conditions?clarity=murky&lux=50", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[usecases.ConditionsReport](t, rec)
	assert.Equal(t, entities.ClarityMurky, report.Conditions.WaterClarity)
	assert.Equal(t, entities.LightLow, report.Conditions.Light)
	assert.Equal(t, entities.TideStateRising, report.Conditions.Tide)

	rec = doRequest(t, h, http.MethodGet, "/api/locations/sea/conditions?lux=bright", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/locations/sea/recommendations", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "user is required")

	rec = doRequest(t, h, http.MethodGet, "/api/locations/sea/recommendations?user=42&limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/locations/sea/recommendations?user=42&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recs := decode[usecases.RecommendationReport](t, rec)
	require.NotEmpty(t, recs.Groups)
	for _, g := range recs.Groups {
		assert.Len(t, g.Items, 1)
	}
	assert.Equal(t, entities.SkillBeginner, recs.Preferences.ExperienceLevel)
}

func TestEquipmentEndpoints(t *testing.T) {
	h := NewHTTPServer(newTestEnv(t).uc).Router()

	rec := doRequest(t, h, http.MethodGet, "/api/equipment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	before := len(decode[[]entities.EquipmentItem](t, rec))
	assert.NotZero(t, before)

	rec = doRequest(t, h, http.MethodPut, "/api/equipment/hook-treble-6", map[string]any{
		"type": "hook", "name": "Treble hook size 6", "target_species": []string{"pike"},
		"conditions": map[string]any{"water_clarity": []string{"clear"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	item := decode[entities.EquipmentItem](t, rec)
	assert.Equal(t, "hook-treble-6", item.ID)
	assert.Equal(t, entities.SkillBeginner, item.SkillLevel)

	rec = doRequest(t, h, http.MethodGet, "/api/equipment", nil)
	assert.Len(t, decode[[]entities.EquipmentItem](t, rec), before+1)

	rec = doRequest(t, h, http.MethodPut, "/api/equipment/x", map[string]any{"type": "boat", "name": "Kayak"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferenceEndpoints(t *testing.T) {
	env := newTestEnv(t)
	h := NewHTTPServer(env.uc).Router()
	env.addLocation(t, "home", "Home Lake", "")

	rec := doRequest(t, h, http.MethodGet, "/api/users/42/preferences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.SkillBeginner, decode[entities.UserPreferences](t, rec).ExperienceLevel)

	rec = doRequest(t, h, http.MethodPut, "/api/users/42/preferences", map[string]any{"experience_level": "wizard"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/users/42/preferences", map[string]any{
		"target_species":      []string{"Bass"},
		"experience_level":    "expert",
		"home_location_id":    "home",
		"notify_daily_digest": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	prefs := decode[entities.UserPreferences](t, rec)
	assert.Equal(t, "42", prefs.UserID)
	assert.Equal(t, []string{"bass"}, prefs.TargetSpecies)

	rec = doRequest(t, h, http.MethodPost, "/api/users/42/favorites/no-such-item", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/users/42/favorites/rod-medium-spinning", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"rod-medium-spinning"}, decode[entities.UserPreferences](t, rec).FavoriteEquipment)

	rec = doRequest(t, h, http.MethodDelete, "/api/users/42/favorites/rod-medium-spinning", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[entities.UserPreferences](t, rec).FavoriteEquipment)
}
