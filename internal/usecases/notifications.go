package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
)

// TideNoticeWindow is how far ahead a tide turn is announced
const TideNoticeWindow = time.Hour

// Notification is a message addressed to a single user
type Notification struct {
	UserID string
	Text   string
}

// subscriber is a user with a home spot and the resolved location
type subscriber struct {
	prefs entities.UserPreferences
	home  entities.Location
}

// subscribers returns users matching the filter whose home location still exists
func (uc *AnglerUseCase) subscribers(wants func(entities.UserPreferences) bool) ([]subscriber, error) {
	all, err := uc.repo.ListPreferences()
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}

	var subs []subscriber
	for _, prefs := range all {
		if !wants(prefs) || prefs.HomeLocationID == "" {
			continue
		}
		home, err := uc.repo.GetLocation(prefs.HomeLocationID)
		if err != nil {
			log.Warn().Err(err).Str("user", prefs.UserID).Msg("Home location unavailable, skipping user")
			continue
		}
		subs = append(subs, subscriber{prefs: prefs, home: home})
	}
	return subs, nil
}

// DailyDigests builds the morning summary for every user with the digest enabled
func (uc *AnglerUseCase) DailyDigests(ctx context.Context) ([]Notification, error) {
	subs, err := uc.subscribers(func(p entities.UserPreferences) bool { return p.NotifyDailyDigest })
	if err != nil {
		return nil, err
	}

	var out []Notification
	for _, sub := range subs {
		report, err := uc.GetRecommendations(ctx, sub.home, sub.prefs.UserID, ConditionInputs{}, 0)
		if err != nil {
			log.Warn().Err(err).Str("user", sub.prefs.UserID).Msg("Failed to build daily digest")
			continue
		}

		var text strings.Builder
		text.WriteString("☀️ Good morning! Today's outlook:\n\n")
		text.WriteString(FormatWeather(sub.home, report.Weather))
		if report.Tide != nil {
			text.WriteString("\n\n")
			text.WriteString(FormatTide(sub.home, *report.Tide))
		}
		text.WriteString("\n\n")
		text.WriteString(FormatRecommendations(report))
		out = append(out, Notification{UserID: sub.prefs.UserID, Text: text.String()})
	}

	log.Info().Int("digests", len(out)).Msg("Built daily digests")
	return out, nil
}

// WeatherAlerts returns alert messages for users who opted in. A user is only
// notified again once the alert text changes.
func (uc *AnglerUseCase) WeatherAlerts(ctx context.Context) ([]Notification, error) {
	subs, err := uc.subscribers(func(p entities.UserPreferences) bool { return p.NotifyWeatherAlerts })
	if err != nil {
		return nil, err
	}

	var out []Notification
	for _, sub := range subs {
		report, err := uc.GetConditions(ctx, sub.home, ConditionInputs{})
		if err != nil {
			log.Warn().Err(err).Str("user", sub.prefs.UserID).Msg("Failed to check weather alerts")
			continue
		}

		text := ""
		if len(report.Conditions.Alerts) > 0 {
			text = fmt.Sprintf("⚠️ Weather alert for %s:\n%s", sub.home.Name, strings.Join(report.Conditions.Alerts, "\n"))
		}
		if !uc.markSent("alert:"+sub.prefs.UserID, text) || text == "" {
			continue
		}
		out = append(out, Notification{UserID: sub.prefs.UserID, Text: text})
	}
	return out, nil
}

// TideNotices announces high and low water coming up within TideNoticeWindow
func (uc *AnglerUseCase) TideNotices(ctx context.Context) ([]Notification, error) {
	subs, err := uc.subscribers(func(p entities.UserPreferences) bool { return p.NotifyTideChanges })
	if err != nil {
		return nil, err
	}

	now := uc.now()
	var out []Notification
	for _, sub := range subs {
		if !sub.home.HasTide() {
			continue
		}
		tide, err := uc.GetTide(ctx, sub.home)
		if err != nil {
			log.Warn().Err(err).Str("user", sub.prefs.UserID).Msg("Failed to check tide")
			continue
		}

		next := nextEvent(tide.Data, now)
		if next == nil || next.Time.Sub(now) > TideNoticeWindow {
			continue
		}
		key := next.Time.UTC().Format(time.RFC3339)
		if !uc.markSent("tide:"+sub.prefs.UserID, key) {
			continue
		}

		mins := int(next.Time.Sub(now).Round(time.Minute) / time.Minute)
		out = append(out, Notification{
			UserID: sub.prefs.UserID,
			Text:   fmt.Sprintf("🌊 Tide turning: %s at %s in %d min (%.2f m).", tideLabel(next.Type), sub.home.Name, mins, next.Height),
		})
	}
	return out, nil
}

// markSent records value as the last notice of the given kind and reports whether it changed
func (uc *AnglerUseCase) markSent(key, value string) bool {
	uc.alertMu.Lock()
	defer uc.alertMu.Unlock()

	if uc.lastAlert[key] == value {
		return false
	}
	uc.lastAlert[key] = value
	return true
}

func nextEvent(t entities.TideData, now time.Time) *entities.TideEvent {
	var next *entities.TideEvent
	for _, ev := range []*entities.TideEvent{t.NextHigh, t.NextLow} {
		if ev == nil || !ev.Time.After(now) {
			continue
		}
		if next == nil || ev.Time.Before(next.Time) {
			next = ev
		}
	}
	return next
}
