package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetWeatherServesCacheWithinTTL(t *testing.T) {
	f := newFixture(t, Options{})
	loc := f.addLocation(t, "loc-1", "Montauk", "")
	f.weather.On("FetchWeather", mock.Anything, mock.Anything).Return(mildWeather(), nil).Once()

	first, err := f.uc.GetWeather(context.Background(), loc)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.False(t, first.Stale)
	assert.True(t, first.Data.CachedAt.Equal(testStart))

	f.clock.Advance(29 * time.Minute)
	second, err := f.uc.GetWeather(context.Background(), loc)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.False(t, second.Stale)
	assert.Equal(t, 19.0, second.Data.Temperature)

	f.weather.AssertNumberOfCalls(t, "FetchWeather", 1)
}

func TestGetWeatherRefetchesAfterTTL(t *testing.T) {
	f := newFixture(t, Options{WeatherTTL: 10 * time.Minute})
	loc := f.addLocation(t, "loc-1", "Montauk", "")

	warmer := mildWeather()
	warmer.Temperature = 24
	f.weather.On("FetchWeather", mock.Anything, mock.Anything).Return(mildWeather(), nil).Once()
	f.weather.On("FetchWeather", mock.Anything, mock.Anything).Return(warmer, nil).Once()

	_, err := f.uc.GetWeather(context.Background(), loc)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	res, err := f.uc.GetWeather(context.Background(), loc)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, 24.0, res.Data.Temperature)

	cached, err := f.repo.GetWeather("loc-1")
	require.NoError(t, err)
	assert.Equal(t, 24.0, cached.Temperature)
	assert.True(t, cached.CachedAt.Equal(testStart.Add(10*time.Minute)))
	f.weather.AssertExpectations(t)
}

func TestGetWeatherFallsBackToStaleCache(t *testing.T) {
	f := newFixture(t, Options{})
	loc := f.addLocation(t, "loc-1", "Montauk", "")
	f.weather.On("FetchWeather", mock.Anything, mock.Anything).Return(mildWeather(), nil).Once()
	f.weather.On("FetchWeather", mock.Anything, mock.Anything).Return(entities.WeatherData{}, errors.New("connection refused")).Once()

	_, err := f.uc.GetWeather(context.Background(), loc)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	res, err := f.uc.GetWeather(context.Background(), loc)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.True(t, res.Stale)
	assert.Equal(t, 19.0, res.Data.Temperature)
	assert.True(t, res.Data.CachedAt.Equal(testStart))
}

func TestGetWeatherFailsWithoutCache(t *testing.T) {
	f := newFixture(t, Options{})
	loc := f.addLocation(t, "loc-1", "Montauk", "")
	f.weather.On("FetchWeather", mock.Anything, mock.Anything).Return(entities.WeatherData{}, errors.New("timeout"))

	_, err := f.uc.GetWeather(context.Background(), loc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "timeout")
}

func TestGetTideWithoutStation(t *testing.T) {
	f := newFixture(t, Options{})
	loc := f.addLocation(t, "lake", "Lake Bled", "")

	_, err := f.uc.GetTide(context.Background(), loc)
	assert.ErrorIs(t, err, entities.ErrNoTideStation)
	f.tide.AssertNotCalled(t, "FetchTide", mock.Anything, mock.Anything)
}

func TestGetTideRederivesCachedEvents(t *testing.T) {
	f := newFixture(t, Options{})
	loc := f.addLocation(t, "loc-1", "Montauk", "8510560")
	f.tide.On("FetchTide", mock.Anything, mock.Anything).Return(tideAround("8510560"), nil).Once()

	first, err := f.uc.GetTide(context.Background(), loc)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, entities.TideRising, first.Data.Type)
	require.NotNil(t, first.Data.NextHigh)
	assert.True(t, first.Data.NextHigh.Time.Equal(testStart.Add(2*time.Hour)))

	// Past the high water the cached events now describe a falling tide
	f.clock.Advance(3 * time.Hour)
	second, err := f.uc.GetTide(context.Background(), loc)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, entities.TideFalling, second.Data.Type)
	require.NotNil(t, second.Data.NextLow)
	assert.True(t, second.Data.NextLow.Time.Equal(testStart.Add(8*time.Hour)))

	f.tide.AssertNumberOfCalls(t, "FetchTide", 1)
}

func TestGetTideStationChangeInvalidatesCache(t *testing.T) {
	f := newFixture(t, Options{})
	loc := f.addLocation(t, "loc-1", "Montauk", "8510560")
	require.NoError(t, f.repo.SaveTide(entities.TideData{LocationID: "loc-1", Station: "0000000", CachedAt: testStart}))
	f.tide.On("FetchTide", mock.Anything, mock.Anything).Return(tideAround("8510560"), nil).Once()

	res, err := f.uc.GetTide(context.Background(), loc)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, "8510560", res.Data.Station)
	f.tide.AssertExpectations(t)
}

func TestGetTideStaleAndError(t *testing.T) {
	f := newFixture(t, Options{TideTTL: time.Hour})
	loc := f.addLocation(t, "loc-1", "Montauk", "8510560")
	other := f.addLocation(t, "loc-2", "Orient Point", "8512668")

	f.tide.On("FetchTide", mock.Anything, byID("loc-1")).Return(tideAround("8510560"), nil).Once()
	f.tide.On("FetchTide", mock.Anything, mock.Anything).Return(entities.TideData{}, errors.New("noaa down"))

	_, err := f.uc.GetTide(context.Background(), loc)
	require.NoError(t, err)

	f.clock.Advance(90 * time.Minute)
	res, err := f.uc.GetTide(context.Background(), loc)
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Len(t, res.Data.Events, 4)

	_, err = f.uc.GetTide(context.Background(), other)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestRefreshAllContinuesPastFailures(t *testing.T) {
	f := newFixture(t, Options{})
	good := f.addLocation(t, "a", "Alpha", "")
	bad := f.addLocation(t, "b", "Bravo", "")

	f.weather.On("FetchWeather", mock.Anything, byID(good.ID)).Return(mildWeather(), nil)
	f.weather.On("FetchWeather", mock.Anything, byID(bad.ID)).Return(entities.WeatherData{}, errors.New("boom"))

	err := f.uc.RefreshAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bravo")

	cached, err := f.repo.GetWeather("a")
	require.NoError(t, err)
	assert.True(t, cached.CachedAt.Equal(testStart))

	_, err = f.repo.GetWeather("b")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
