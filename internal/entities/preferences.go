package entities

import (
	"strings"
	"time"
)

// SkillLevel describes angler experience, also used to rate gear difficulty
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillExpert       SkillLevel = "expert"
)

// Rank orders skill levels; unknown levels rank as beginner
func (s SkillLevel) Rank() int {
	switch s {
	case SkillIntermediate:
		return 1
	case SkillExpert:
		return 2
	default:
		return 0
	}
}

// IsValid reports whether s is a known skill level
func (s SkillLevel) IsValid() bool {
	return s == SkillBeginner || s == SkillIntermediate || s == SkillExpert
}

// UserPreferences holds what an angler fishes for and how they want to be notified
type UserPreferences struct {
	UserID              string     `json:"user_id"`
	TargetSpecies       []string   `json:"target_species"`
	FavoriteEquipment   []string   `json:"favorite_equipment"`
	ExperienceLevel     SkillLevel `json:"experience_level"`
	HomeLocationID      string     `json:"home_location_id,omitempty"`
	NotifyWeatherAlerts bool       `json:"notify_weather_alerts"`
	NotifyTideChanges   bool       `json:"notify_tide_changes"`
	NotifyDailyDigest   bool       `json:"notify_daily_digest"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// DefaultPreferences returns the preferences used for users that never saved any
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:            userID,
		TargetSpecies:     []string{},
		FavoriteEquipment: []string{},
		ExperienceLevel:   SkillBeginner,
	}
}

// IsFavorite reports whether the item is among the user's favorites
func (p UserPreferences) IsFavorite(itemID string) bool {
	for _, id := range p.FavoriteEquipment {
		if id == itemID {
			return true
		}
	}
	return false
}

// Validate checks the preference fields and returns a user-facing error
func (p UserPreferences) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return NewValidationError("user id is required")
	}
	if !p.ExperienceLevel.IsValid() {
		return NewValidationError("experience level must be beginner, intermediate or expert")
	}
	for _, s := range p.TargetSpecies {
		if strings.TrimSpace(s) == "" {
			return NewValidationError("species names must not be empty")
		}
	}
	return nil
}
