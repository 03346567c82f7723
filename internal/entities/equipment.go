package entities

// EquipmentType is the kind of gear an item belongs to
type EquipmentType string

const (
	EquipmentRod  EquipmentType = "rod"
	EquipmentReel EquipmentType = "reel"
	EquipmentLine EquipmentType = "line"
	EquipmentLure EquipmentType = "lure"
	EquipmentBait EquipmentType = "bait"
	EquipmentHook EquipmentType = "hook"
)

// EquipmentTypes lists every equipment type in display order
var EquipmentTypes = []EquipmentType{
	EquipmentRod,
	EquipmentReel,
	EquipmentLine,
	EquipmentLure,
	EquipmentBait,
	EquipmentHook,
}

// IsValid reports whether t is a known equipment type
func (t EquipmentType) IsValid() bool {
	for _, known := range EquipmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ConditionTags lists the conditions an item is suited to.
// An empty list matches any condition.
type ConditionTags struct {
	WaterClarity []string `json:"water_clarity,omitempty" yaml:"water_clarity,omitempty"`
	Light        []string `json:"light,omitempty" yaml:"light,omitempty"`
	Weather      []string `json:"weather,omitempty" yaml:"weather,omitempty"`
	Tide         []string `json:"tide,omitempty" yaml:"tide,omitempty"`
}

// EquipmentItem is a piece of static gear metadata
type EquipmentItem struct {
	ID            string        `json:"id" yaml:"id"`
	Type          EquipmentType `json:"type" yaml:"type"`
	Name          string        `json:"name" yaml:"name"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	TargetSpecies []string      `json:"target_species,omitempty" yaml:"target_species,omitempty"`
	Conditions    ConditionTags `json:"conditions" yaml:"conditions"`
	SkillLevel    SkillLevel    `json:"skill_level" yaml:"skill_level"`
}

// Validate checks the item fields and returns a user-facing error
func (e EquipmentItem) Validate() error {
	if e.ID == "" {
		return NewValidationError("equipment id is required")
	}
	if e.Name == "" {
		return NewValidationError("equipment name is required")
	}
	if !e.Type.IsValid() {
		return NewValidationError("unknown equipment type: " + string(e.Type))
	}
	if e.SkillLevel != "" && !e.SkillLevel.IsValid() {
		return NewValidationError("unknown skill level: " + string(e.SkillLevel))
	}
	return nil
}
