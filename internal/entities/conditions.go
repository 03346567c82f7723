package entities

// Condition categories derived from weather, tide and light readings
const (
	ClarityClear   = "clear"
	ClarityStained = "stained"
	ClarityMurky   = "murky"

	LightBright   = "bright"
	LightOvercast = "overcast"
	LightLow      = "low_light"
	LightDark     = "dark"

	WeatherSunny  = "sunny"
	WeatherCloudy = "cloudy"
	WeatherRainy  = "rainy"
	WeatherWindy  = "windy"
	WeatherStormy = "stormy"

	TideStateRising    = "rising"
	TideStateFalling   = "falling"
	TideStateHighSlack = "high_slack"
	TideStateLowSlack  = "low_slack"
	TideStateNone      = "none"
)

// IsValidClarity reports whether c is a known water clarity category
func IsValidClarity(c string) bool {
	return c == ClarityClear || c == ClarityStained || c == ClarityMurky
}

// Conditions are the categories the recommendation filter works on
type Conditions struct {
	WaterClarity string   `json:"water_clarity"`
	Light        string   `json:"light"`
	Weather      []string `json:"weather"`
	Tide         string   `json:"tide"`
	Alerts       []string `json:"alerts,omitempty"`
}

// Recommendation is a single suggested equipment item
type Recommendation struct {
	Item     EquipmentItem `json:"item"`
	Score    int           `json:"score"`
	Reason   string        `json:"reason"`
	Favorite bool          `json:"favorite"`
}

// RecommendationGroup holds the recommendations for one equipment type
type RecommendationGroup struct {
	Type  EquipmentType    `json:"type"`
	Items []Recommendation `json:"items"`
}
