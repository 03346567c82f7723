package usecases

import (
	_ "embed"
	"fmt"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/equipment.yaml
var defaultCatalog []byte

// DefaultCatalog parses the built-in equipment catalog
func DefaultCatalog() ([]entities.EquipmentItem, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog parses a YAML equipment list and validates every item
func ParseCatalog(data []byte) ([]entities.EquipmentItem, error) {
	var items []entities.EquipmentItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse equipment catalog: %w", err)
	}

	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("catalog item %d: %w", i, err)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("catalog item %d: duplicate id %q", i, item.ID)
		}
		seen[item.ID] = true
	}
	return items, nil
}

// SeedEquipment loads the catalog into the repository when it holds no equipment yet.
// It returns the number of items written.
func (uc *AnglerUseCase) SeedEquipment(catalog []entities.EquipmentItem) (int, error) {
	count, err := uc.repo.CountEquipment()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Debug().Int("items", count).Msg("Equipment already seeded")
		return 0, nil
	}

	if err := uc.repo.SaveEquipment(catalog); err != nil {
		return 0, fmt.Errorf("failed to seed equipment: %w", err)
	}
	log.Info().Int("items", len(catalog)).Msg("Seeded equipment catalog")
	return len(catalog), nil
}

// ListEquipment returns all known equipment
func (uc *AnglerUseCase) ListEquipment() ([]entities.EquipmentItem, error) {
	return uc.repo.ListEquipment()
}

// SaveEquipmentItem validates and stores a single equipment item
func (uc *AnglerUseCase) SaveEquipmentItem(item entities.EquipmentItem) (entities.EquipmentItem, error) {
	if item.SkillLevel == "" {
		item.SkillLevel = entities.SkillBeginner
	}
	if err := item.Validate(); err != nil {
		return entities.EquipmentItem{}, err
	}
	if err := uc.repo.SaveEquipment([]entities.EquipmentItem{item}); err != nil {
		return entities.EquipmentItem{}, err
	}
	log.Info().Str("id", item.ID).Str("type", string(item.Type)).Msg("Saved equipment item")
	return item, nil
}
