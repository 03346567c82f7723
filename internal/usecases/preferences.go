package usecases

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
)

// GetPreferences returns the user's preferences, or defaults when none are stored
func (uc *AnglerUseCase) GetPreferences(userID string) (entities.UserPreferences, error) {
	prefs, err := uc.repo.GetPreferences(userID)
	if errors.Is(err, entities.ErrNotFound) {
		return entities.DefaultPreferences(userID), nil
	}
	if err != nil {
		return entities.UserPreferences{}, err
	}
	return prefs, nil
}

// UpdatePreferences normalizes, validates and stores the user's preferences
func (uc *AnglerUseCase) UpdatePreferences(prefs entities.UserPreferences) (entities.UserPreferences, error) {
	prefs.TargetSpecies = normalizeSpecies(prefs.TargetSpecies)
	if prefs.FavoriteEquipment == nil {
		prefs.FavoriteEquipment = []string{}
	}
	if prefs.ExperienceLevel == "" {
		prefs.ExperienceLevel = entities.SkillBeginner
	}

	if err := prefs.Validate(); err != nil {
		return entities.UserPreferences{}, err
	}

	if prefs.HomeLocationID != "" {
		if _, err := uc.repo.GetLocation(prefs.HomeLocationID); errors.Is(err, entities.ErrNotFound) {
			return entities.UserPreferences{}, entities.NewValidationError("home location does not exist")
		} else if err != nil {
			return entities.UserPreferences{}, err
		}
	}

	for _, id := range prefs.FavoriteEquipment {
		if _, err := uc.repo.GetEquipment(id); errors.Is(err, entities.ErrNotFound) {
			return entities.UserPreferences{}, entities.NewValidationError(fmt.Sprintf("unknown equipment %q", id))
		} else if err != nil {
			return entities.UserPreferences{}, err
		}
	}

	prefs.UpdatedAt = uc.now().UTC()
	if err := uc.repo.SavePreferences(prefs); err != nil {
		return entities.UserPreferences{}, err
	}

	log.Info().Str("user", prefs.UserID).Msg("Updated preferences")
	return prefs, nil
}

// SetFavorite adds or removes an equipment item from the user's favorites
func (uc *AnglerUseCase) SetFavorite(userID, itemID string, favorite bool) (entities.UserPreferences, error) {
	if _, err := uc.repo.GetEquipment(itemID); errors.Is(err, entities.ErrNotFound) {
		return entities.UserPreferences{}, entities.NewValidationError(fmt.Sprintf("unknown equipment %q", itemID))
	} else if err != nil {
		return entities.UserPreferences{}, err
	}

	prefs, err := uc.GetPreferences(userID)
	if err != nil {
		return entities.UserPreferences{}, err
	}

	favorites := make([]string, 0, len(prefs.FavoriteEquipment)+1)
	for _, id := range prefs.FavoriteEquipment {
		if id != itemID {
			favorites = append(favorites, id)
		}
	}
	if favorite {
		favorites = append(favorites, itemID)
	}
	prefs.FavoriteEquipment = favorites

	return uc.UpdatePreferences(prefs)
}

// normalizeSpecies lowercases, trims and de-duplicates species names, dropping blanks
func normalizeSpecies(species []string) []string {
	out := make([]string, 0, len(species))
	seen := make(map[string]bool, len(species))
	for _, s := range species {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
