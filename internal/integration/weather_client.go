package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// DefaultWeatherURL is the Open-Meteo forecast endpoint
const DefaultWeatherURL = "https://api.open-meteo.com/v1/forecast"

// openMeteoTimeLayout is the local-time layout Open-Meteo uses with timezone=UTC
const openMeteoTimeLayout = "2006-01-02T15:04"

const currentFields = "temperature_2m,relative_humidity_2m,precipitation,weather_code,cloud_cover," +
	"pressure_msl,wind_speed_10m,wind_direction_10m,wind_gusts_10m,is_day"

// WeatherClient fetches current conditions from the Open-Meteo REST API
type WeatherClient struct {
	baseURL string
	client  *http.Client
}

// NewWeatherClient creates a new weather client; empty baseURL selects Open-Meteo
func NewWeatherClient(baseURL string, client *http.Client) *WeatherClient {
	if baseURL == "" {
		baseURL = DefaultWeatherURL
	}
	return &WeatherClient{
		baseURL: baseURL,
		client:  newHTTPClient(client),
	}
}

// FetchWeather retrieves current weather for the location
func (wc *WeatherClient) FetchWeather(ctx context.Context, loc entities.Location) (entities.WeatherData, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	q.Set("current", currentFields)
	q.Set("daily", "sunrise,sunset")
	q.Set("timezone", "UTC")
	q.Set("forecast_days", "1")
	q.Set("wind_speed_unit", "kmh")

	log.Info().Str("location", loc.Name).Msg("Requesting weather from provider")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wc.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return entities.WeatherData{}, fmt.Errorf("failed to build weather request: %w", err)
	}

	res, err := wc.client.Do(req)
	if err != nil {
		return entities.WeatherData{}, fmt.Errorf("failed to fetch weather: %w", err)
	}
	defer res.Body.Close()

	// Check for successful response
	if res.StatusCode != http.StatusOK {
		return entities.WeatherData{}, fmt.Errorf("unexpected weather status code: %d %s", res.StatusCode, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return entities.WeatherData{}, fmt.Errorf("failed to read weather response: %w", err)
	}

	data, err := parseOpenMeteo(body)
	if err != nil {
		return entities.WeatherData{}, err
	}
	data.LocationID = loc.ID

	log.Info().
		Str("location", loc.Name).
		Float64("temperature", data.Temperature).
		Float64("wind", data.WindSpeed).
		Msg("Received weather data")
	return data, nil
}

func parseOpenMeteo(body []byte) (entities.WeatherData, error) {
	if !gjson.ValidBytes(body) {
		return entities.WeatherData{}, fmt.Errorf("weather response is not valid JSON")
	}

	current := gjson.GetBytes(body, "current")
	if !current.Exists() {
		reason := gjson.GetBytes(body, "reason").String()
		return entities.WeatherData{}, fmt.Errorf("weather response has no current block: %s", reason)
	}

	observed, err := time.ParseInLocation(openMeteoTimeLayout, current.Get("time").String(), time.UTC)
	if err != nil {
		return entities.WeatherData{}, fmt.Errorf("failed to parse weather time: %w", err)
	}

	data := entities.WeatherData{
		Temperature:   current.Get("temperature_2m").Float(),
		Humidity:      int(current.Get("relative_humidity_2m").Int()),
		Precipitation: current.Get("precipitation").Float(),
		WeatherCode:   int(current.Get("weather_code").Int()),
		CloudCover:    int(current.Get("cloud_cover").Int()),
		Pressure:      current.Get("pressure_msl").Float(),
		WindSpeed:     current.Get("wind_speed_10m").Float(),
		WindDirection: int(current.Get("wind_direction_10m").Int()),
		WindGust:      current.Get("wind_gusts_10m").Float(),
		IsDay:         current.Get("is_day").Int() == 1,
		Timestamp:     observed,
	}

	// Sunrise and sunset are optional; polar days have none
	if s := gjson.GetBytes(body, "daily.sunrise.0").String(); s != "" {
		if t, err := time.ParseInLocation(openMeteoTimeLayout, s, time.UTC); err == nil {
			data.Sunrise = t
		} else {
			log.Warn().Err(err).Str("value", s).Msg("Skipping unparseable sunrise")
		}
	}
	if s := gjson.GetBytes(body, "daily.sunset.0").String(); s != "" {
		if t, err := time.ParseInLocation(openMeteoTimeLayout, s, time.UTC); err == nil {
			data.Sunset = t
		} else {
			log.Warn().Err(err).Str("value", s).Msg("Skipping unparseable sunset")
		}
	}

	return data, nil
}
