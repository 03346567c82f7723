package usecases

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
)

const displayTime = "Jan 2 15:04 MST"

// FormatLocations formats the saved locations for display
func FormatLocations(locations []entities.Location) string {
	if len(locations) == 0 {
		return "No fishing spots saved yet. Add one with /addlocation <name> or /addlocation <lat> <lon> [station]."
	}

	var result strings.Builder
	result.WriteString("Saved fishing spots:\n\n")
	for _, loc := range locations {
		result.WriteString(fmt.Sprintf("📍 %s (%.4f, %.4f)", loc.Name, loc.Latitude, loc.Longitude))
		if loc.HasTide() {
			result.WriteString(fmt.Sprintf(" 🌊 station %s", loc.TideStation))
		}
		result.WriteString("\n")
	}
	return result.String()
}

// FormatWeather formats a weather result for display
func FormatWeather(loc entities.Location, res entities.WeatherResult) string {
	w := res.Data

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Weather for %s:\n\n", loc.Name))
	result.WriteString(fmt.Sprintf("☁️ %s\n", w.Description()))
	result.WriteString(fmt.Sprintf("🌡️ Temperature: %.1f °C\n", w.Temperature))
	result.WriteString(fmt.Sprintf("💨 Wind: %.0f km/h from %d°", w.WindSpeed, w.WindDirection))
	if w.WindGust > 0 {
		result.WriteString(fmt.Sprintf(", gusts %.0f km/h", w.WindGust))
	}
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("🌥️ Cloud cover: %d%%\n", w.CloudCover))
	if w.Precipitation > 0 {
		result.WriteString(fmt.Sprintf("🌧️ Precipitation: %.1f mm\n", w.Precipitation))
	}
	if w.Pressure > 0 {
		result.WriteString(fmt.Sprintf("📈 Pressure: %.0f hPa\n", w.Pressure))
	}
	if !w.Sunrise.IsZero() && !w.Sunset.IsZero() {
		result.WriteString(fmt.Sprintf("🌅 Sunrise %s, sunset %s\n", w.Sunrise.Format("15:04 MST"), w.Sunset.Format("15:04 MST")))
	}
	result.WriteString(freshness(res.Stale, w.CachedAt))
	return result.String()
}

// FormatTide formats a tide result for display
func FormatTide(loc entities.Location, res entities.TideResult) string {
	t := res.Data

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Tide for %s (station %s):\n\n", loc.Name, t.Station))
	if len(t.Events) == 0 {
		result.WriteString("No tide predictions available.\n")
		result.WriteString(freshness(res.Stale, t.CachedAt))
		return result.String()
	}

	result.WriteString(fmt.Sprintf("🌊 Now: %s, %.2f m\n", tideLabel(t.Type), t.Height))
	if t.NextHigh != nil {
		result.WriteString(fmt.Sprintf("⬆️ Next high: %s (%.2f m)\n", t.NextHigh.Time.Format(displayTime), t.NextHigh.Height))
	}
	if t.NextLow != nil {
		result.WriteString(fmt.Sprintf("⬇️ Next low: %s (%.2f m)\n", t.NextLow.Time.Format(displayTime), t.NextLow.Height))
	}
	result.WriteString(freshness(res.Stale, t.CachedAt))
	return result.String()
}

// FormatConditions formats derived conditions as a short block
func FormatConditions(c entities.Conditions) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("💧 Water: %s\n", orUnknown(c.WaterClarity)))
	result.WriteString(fmt.Sprintf("☀️ Light: %s\n", orUnknown(humanize(c.Light))))
	if len(c.Weather) > 0 {
		result.WriteString(fmt.Sprintf("🌤️ Weather: %s\n", strings.Join(c.Weather, ", ")))
	}
	if c.Tide != "" && c.Tide != entities.TideStateNone {
		result.WriteString(fmt.Sprintf("🌊 Tide: %s\n", humanize(c.Tide)))
	}
	for _, alert := range c.Alerts {
		result.WriteString(fmt.Sprintf("⚠️ %s\n", alert))
	}
	return result.String()
}

// FormatRecommendations formats a recommendation report for display
func FormatRecommendations(report RecommendationReport) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Gear for %s:\n\n", report.Location.Name))
	result.WriteString(FormatConditions(report.Conditions))
	result.WriteString("\n")

	if len(report.Groups) == 0 {
		result.WriteString("Nothing in the catalog fits these conditions and your preferences.\n")
	}
	for _, group := range report.Groups {
		result.WriteString(fmt.Sprintf("🎣 %s\n", strings.ToUpper(string(group.Type))))
		for _, rec := range group.Items {
			star := ""
			if rec.Favorite {
				star = " ⭐"
			}
			result.WriteString(fmt.Sprintf("• %s%s [%s]\n  %s\n", rec.Item.Name, star, rec.Item.ID, rec.Reason))
		}
		result.WriteString("\n")
	}

	if report.Weather.Stale || (report.Tide != nil && report.Tide.Stale) {
		result.WriteString("⚠️ Based on outdated data, the latest update failed.\n")
	}
	return strings.TrimRight(result.String(), "\n")
}

// FormatPreferences formats a user's preferences for display
func FormatPreferences(prefs entities.UserPreferences, home string) string {
	var result strings.Builder
	result.WriteString("Your preferences:\n\n")
	result.WriteString(fmt.Sprintf("🎓 Level: %s\n", prefs.ExperienceLevel))
	if len(prefs.TargetSpecies) > 0 {
		result.WriteString(fmt.Sprintf("🐟 Species: %s\n", strings.Join(prefs.TargetSpecies, ", ")))
	} else {
		result.WriteString("🐟 Species: any\n")
	}
	if home != "" {
		result.WriteString(fmt.Sprintf("🏠 Home spot: %s\n", home))
	}
	if len(prefs.FavoriteEquipment) > 0 {
		result.WriteString(fmt.Sprintf("⭐ Favorites: %s\n", strings.Join(prefs.FavoriteEquipment, ", ")))
	}
	result.WriteString(fmt.Sprintf("🔔 Alerts %s, tides %s, digest %s\n",
		onOff(prefs.NotifyWeatherAlerts), onOff(prefs.NotifyTideChanges), onOff(prefs.NotifyDailyDigest)))
	return result.String()
}

func freshness(stale bool, cachedAt time.Time) string {
	if stale {
		return fmt.Sprintf("\n⚠️ Latest update failed, showing data from %s", cachedAt.Format(displayTime))
	}
	return fmt.Sprintf("\n🕒 Updated: %s", cachedAt.Format(displayTime))
}

func tideLabel(t entities.TideType) string {
	switch t {
	case entities.TideHigh:
		return "high water"
	case entities.TideLow:
		return "low water"
	default:
		return string(t)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
