package usecases

import (
	"sort"
	"strings"

	"github.com/abelzeko/angler-bot/internal/entities"
)

// DefaultRecommendationLimit is how many items are kept per equipment type
const DefaultRecommendationLimit = 3

const favoriteBoost = 2

// Recommend filters and scores equipment for the given conditions and preferences.
// Unknown condition categories (empty) do not filter. Types without a match are omitted.
func Recommend(items []entities.EquipmentItem, c entities.Conditions, prefs entities.UserPreferences, limit int) []entities.RecommendationGroup {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	byType := make(map[entities.EquipmentType][]entities.Recommendation)
	for _, item := range items {
		rec, ok := scoreItem(item, c, prefs)
		if !ok {
			continue
		}
		byType[item.Type] = append(byType[item.Type], rec)
	}

	var groups []entities.RecommendationGroup
	for _, t := range entities.EquipmentTypes {
		recs := byType[t]
		if len(recs) == 0 {
			continue
		}
		sort.SliceStable(recs, func(i, j int) bool {
			if recs[i].Score != recs[j].Score {
				return recs[i].Score > recs[j].Score
			}
			return recs[i].Item.Name < recs[j].Item.Name
		})
		if len(recs) > limit {
			recs = recs[:limit]
		}
		groups = append(groups, entities.RecommendationGroup{Type: t, Items: recs})
	}
	return groups
}

func scoreItem(item entities.EquipmentItem, c entities.Conditions, prefs entities.UserPreferences) (entities.Recommendation, bool) {
	var species []string
	if len(prefs.TargetSpecies) > 0 && len(item.TargetSpecies) > 0 {
		species = intersect(item.TargetSpecies, prefs.TargetSpecies)
		if len(species) == 0 {
			return entities.Recommendation{}, false
		}
	}

	if item.SkillLevel.Rank() > prefs.ExperienceLevel.Rank() {
		return entities.Recommendation{}, false
	}

	score := 0
	var suited []string

	dims := []struct {
		tags    []string
		current []string
		phrase  func([]string) string
	}{
		{item.Conditions.WaterClarity, single(c.WaterClarity), func(m []string) string { return joinWords(m, " or ") + " water" }},
		{item.Conditions.Light, single(c.Light), func(m []string) string { return humanize(joinWords(m, " or ")) }},
		{item.Conditions.Weather, c.Weather, func(m []string) string { return joinWords(m, " and ") + " weather" }},
		{item.Conditions.Tide, single(c.Tide), tidePhrase},
	}
	for _, d := range dims {
		if len(d.tags) == 0 || len(d.current) == 0 {
			continue
		}
		matched := intersect(d.tags, d.current)
		if len(matched) == 0 {
			return entities.Recommendation{}, false
		}
		score++
		suited = append(suited, d.phrase(matched))
	}

	if len(species) > 0 {
		score++
	}

	favorite := prefs.IsFavorite(item.ID)
	if favorite {
		score += favoriteBoost
	}

	return entities.Recommendation{
		Item:     item,
		Score:    score,
		Reason:   buildReason(suited, species, favorite),
		Favorite: favorite,
	}, true
}

func buildReason(suited, species []string, favorite bool) string {
	var parts []string
	if len(suited) == 0 {
		parts = append(parts, "All-round choice for these conditions.")
	} else {
		parts = append(parts, "Suited to "+listSentence(suited)+".")
	}
	if len(species) > 0 {
		parts = append(parts, "Targets "+listSentence(species)+".")
	}
	if favorite {
		parts = append(parts, "One of your favorites.")
	}
	return strings.Join(parts, " ")
}

func tidePhrase(m []string) string {
	if len(m) == 1 && m[0] == entities.TideStateNone {
		return "still water"
	}
	return humanize(joinWords(m, " or ")) + " tide"
}

// listSentence joins words as "a", "a and b" or "a, b and c"
func listSentence(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}

func joinWords(words []string, sep string) string {
	return strings.Join(words, sep)
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// intersect returns the elements of a that are in b, compared case-insensitively
func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	var out []string
	for _, v := range a {
		if set[strings.ToLower(strings.TrimSpace(v))] {
			out = append(out, v)
		}
	}
	return out
}
