package entities

import "time"

// WeatherData represents current weather conditions at a location
type WeatherData struct {
	LocationID    string    `json:"location_id"`
	Temperature   float64   `json:"temperature"`    // °C
	WindSpeed     float64   `json:"wind_speed"`     // km/h
	WindGust      float64   `json:"wind_gust"`      // km/h
	WindDirection int       `json:"wind_direction"` // degrees
	CloudCover    int       `json:"cloud_cover"`    // %
	Humidity      int       `json:"humidity"`       // %
	Pressure      float64   `json:"pressure"`       // hPa
	Precipitation float64   `json:"precipitation"`  // mm
	WeatherCode   int       `json:"weather_code"`   // WMO code
	IsDay         bool      `json:"is_day"`
	Sunrise       time.Time `json:"sunrise"`
	Sunset        time.Time `json:"sunset"`
	Timestamp     time.Time `json:"timestamp"` // When the provider observed the data
	CachedAt      time.Time `json:"cached_at"`
}

// WeatherResult wraps weather data with cache information
type WeatherResult struct {
	Data      WeatherData `json:"data"`
	FromCache bool        `json:"from_cache"`
	Stale     bool        `json:"stale"`
}

// Description returns a short human-readable summary of the WMO weather code
func (w WeatherData) Description() string {
	switch c := w.WeatherCode; {
	case c == 0:
		return "Clear sky"
	case c <= 2:
		return "Partly cloudy"
	case c == 3:
		return "Overcast"
	case c == 45 || c == 48:
		return "Fog"
	case c >= 51 && c <= 57:
		return "Drizzle"
	case c >= 61 && c <= 67:
		return "Rain"
	case c >= 71 && c <= 77:
		return "Snow"
	case c >= 80 && c <= 82:
		return "Rain showers"
	case c == 85 || c == 86:
		return "Snow showers"
	case c >= 95:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
