package usecases

import (
	"context"
	"errors"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
)

// ConditionsReport bundles the derived categories with the data they came from
type ConditionsReport struct {
	Location   entities.Location      `json:"location"`
	Conditions entities.Conditions    `json:"conditions"`
	Weather    entities.WeatherResult `json:"weather"`
	Tide       *entities.TideResult   `json:"tide,omitempty"`
}

// RecommendationReport is a conditions report plus gear picks for one user
type RecommendationReport struct {
	ConditionsReport
	Preferences entities.UserPreferences       `json:"preferences"`
	Groups      []entities.RecommendationGroup `json:"groups"`
}

// GetConditions loads weather and tide for the location and derives the condition categories.
// Weather is required. A tide failure leaves the tide category unknown.
func (uc *AnglerUseCase) GetConditions(ctx context.Context, loc entities.Location, in ConditionInputs) (ConditionsReport, error) {
	if in.WaterClarity != "" && !entities.IsValidClarity(in.WaterClarity) {
		return ConditionsReport{}, entities.NewValidationError("water clarity must be clear, stained or murky")
	}

	weather, err := uc.GetWeather(ctx, loc)
	if err != nil {
		return ConditionsReport{}, err
	}

	report := ConditionsReport{Location: loc, Weather: weather}

	var tideData *entities.TideData
	if loc.HasTide() {
		tide, err := uc.GetTide(ctx, loc)
		switch {
		case err == nil:
			report.Tide = &tide
			tideData = &tide.Data
		case errors.Is(err, entities.ErrNoTideStation):
		default:
			log.Warn().Err(err).Str("location", loc.Name).Msg("Tide unavailable, treating tide as unknown")
		}
	}

	report.Conditions = DeriveConditions(&weather.Data, tideData, loc.HasTide(), in, uc.now())
	return report, nil
}

// GetRecommendations derives conditions for the location and filters the equipment
// catalog with the user's preferences
func (uc *AnglerUseCase) GetRecommendations(ctx context.Context, loc entities.Location, userID string, in ConditionInputs, limit int) (RecommendationReport, error) {
	prefs, err := uc.GetPreferences(userID)
	if err != nil {
		return RecommendationReport{}, err
	}

	conditions, err := uc.GetConditions(ctx, loc, in)
	if err != nil {
		return RecommendationReport{}, err
	}

	items, err := uc.repo.ListEquipment()
	if err != nil {
		return RecommendationReport{}, err
	}

	if limit <= 0 {
		limit = uc.limit
	}
	groups := Recommend(items, conditions.Conditions, prefs, limit)
	if groups == nil {
		groups = []entities.RecommendationGroup{}
	}

	log.Info().
		Str("location", loc.Name).
		Str("user", userID).
		Int("groups", len(groups)).
		Msg("Built gear recommendations")

	return RecommendationReport{
		ConditionsReport: conditions,
		Preferences:      prefs,
		Groups:           groups,
	}, nil
}
