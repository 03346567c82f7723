package usecases

import (
	"fmt"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
)

// Thresholds used when turning raw readings into condition categories
const (
	luxBright   = 10000.0
	luxOvercast = 1000.0
	luxLow      = 10.0

	lowLightWindow = time.Hour

	overcastCloudCover = 70
	cloudyCloudCover   = 60

	murkyPrecipitation   = 5.0
	stainedPrecipitation = 1.0
	rainyPrecipitation   = 0.5

	windyWindSpeed  = 25.0
	alertWindSpeed  = 40.0
	stormyWindGust  = 60.0
	thunderstormMin = 95
)

// ConditionInputs are readings supplied by the caller rather than a remote provider
type ConditionInputs struct {
	WaterClarity string   // clear, stained or murky; empty to derive from rainfall
	LightLux     *float64 // ambient light sensor reading, if the device has one
}

// DeriveConditions maps weather, tide and sensor readings to the categories the
// recommendation filter works on. Nil weather or tide leaves those categories unknown.
func DeriveConditions(weather *entities.WeatherData, tide *entities.TideData, hasTideStation bool, in ConditionInputs, now time.Time) entities.Conditions {
	c := entities.Conditions{
		WaterClarity: deriveClarity(weather, in.WaterClarity),
		Light:        deriveLight(weather, in.LightLux, now),
		Weather:      deriveWeatherTags(weather),
		Tide:         deriveTide(tide, hasTideStation),
		Alerts:       weatherAlerts(weather),
	}
	return c
}

func deriveClarity(w *entities.WeatherData, supplied string) string {
	if entities.IsValidClarity(supplied) {
		return supplied
	}
	if w == nil {
		return ""
	}
	switch {
	case w.Precipitation >= murkyPrecipitation:
		return entities.ClarityMurky
	case w.Precipitation >= stainedPrecipitation:
		return entities.ClarityStained
	default:
		return entities.ClarityClear
	}
}

func deriveLight(w *entities.WeatherData, lux *float64, now time.Time) string {
	if lux != nil {
		switch {
		case *lux >= luxBright:
			return entities.LightBright
		case *lux >= luxOvercast:
			return entities.LightOvercast
		case *lux >= luxLow:
			return entities.LightLow
		default:
			return entities.LightDark
		}
	}
	if w == nil {
		return ""
	}

	if !w.Sunrise.IsZero() && !w.Sunset.IsZero() {
		// Compare times of day so a cached sunrise from yesterday still applies
		rise, set, cur := timeOfDay(w.Sunrise), timeOfDay(w.Sunset), timeOfDay(now)
		dayLength := forward(rise, set)
		sinceRise := forward(rise, cur)
		if sinceRise >= dayLength {
			return entities.LightDark
		}
		if sinceRise < lowLightWindow || forward(cur, set) < lowLightWindow {
			return entities.LightLow
		}
	} else if !w.IsDay {
		return entities.LightDark
	}

	if w.CloudCover >= overcastCloudCover {
		return entities.LightOvercast
	}
	return entities.LightBright
}

func timeOfDay(t time.Time) time.Duration {
	t = t.UTC()
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
}

// forward is the time needed to go from a to b on a 24 hour clock
func forward(a, b time.Duration) time.Duration {
	d := (b - a) % (24 * time.Hour)
	if d < 0 {
		d += 24 * time.Hour
	}
	return d
}

func deriveWeatherTags(w *entities.WeatherData) []string {
	if w == nil {
		return nil
	}

	var tags []string
	stormy := w.WeatherCode >= thunderstormMin || w.WindGust >= stormyWindGust
	rainy := w.Precipitation >= rainyPrecipitation || isRainCode(w.WeatherCode)
	cloudy := w.CloudCover >= cloudyCloudCover

	if stormy {
		tags = append(tags, entities.WeatherStormy)
	}
	if rainy {
		tags = append(tags, entities.WeatherRainy)
	}
	if w.WindSpeed >= windyWindSpeed {
		tags = append(tags, entities.WeatherWindy)
	}
	if cloudy {
		tags = append(tags, entities.WeatherCloudy)
	}
	if !stormy && !rainy && !cloudy {
		tags = append(tags, entities.WeatherSunny)
	}
	return tags
}

func isRainCode(code int) bool {
	return (code >= 51 && code <= 67) || (code >= 80 && code <= 82)
}

func deriveTide(t *entities.TideData, hasTideStation bool) string {
	if !hasTideStation {
		return entities.TideStateNone
	}
	if t == nil {
		return ""
	}
	switch t.Type {
	case entities.TideRising:
		return entities.TideStateRising
	case entities.TideFalling:
		return entities.TideStateFalling
	case entities.TideHigh:
		return entities.TideStateHighSlack
	case entities.TideLow:
		return entities.TideStateLowSlack
	default:
		return ""
	}
}

func weatherAlerts(w *entities.WeatherData) []string {
	if w == nil {
		return nil
	}

	var alerts []string
	if w.WeatherCode >= thunderstormMin {
		alerts = append(alerts, "Thunderstorm reported, stay off open water.")
	}
	if w.WindGust >= stormyWindGust {
		alerts = append(alerts, fmt.Sprintf("Gusts up to %.0f km/h.", w.WindGust))
	}
	if w.WindSpeed >= alertWindSpeed {
		alerts = append(alerts, fmt.Sprintf("Strong wind of %.0f km/h.", w.WindSpeed))
	}
	return alerts
}
