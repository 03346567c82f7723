package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
)

// SaveEquipment upserts equipment items in a single transaction
func (r *SQLiteRepository) SaveEquipment(items []entities.EquipmentItem) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Prepare SQL statement for upserting items
	stmt, err := tx.Prepare(`
		INSERT INTO equipment(id, type, name, description, target_species, conditions, skill_level)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		type=excluded.type,
		name=excluded.name,
		description=excluded.description,
		target_species=excluded.target_species,
		conditions=excluded.conditions,
		skill_level=excluded.skill_level
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		species, err := marshalList(item.TargetSpecies)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to encode species for %s: %w", item.ID, err)
		}
		conditions, err := json.Marshal(item.Conditions)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to encode conditions for %s: %w", item.ID, err)
		}

		level := item.SkillLevel
		if level == "" {
			level = entities.SkillBeginner
		}

		if _, err := stmt.Exec(item.ID, string(item.Type), item.Name, item.Description, species, string(conditions), string(level)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert equipment %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Int("count", len(items)).Msg("Saved equipment items")
	return nil
}

// GetEquipment retrieves a single equipment item
func (r *SQLiteRepository) GetEquipment(id string) (entities.EquipmentItem, error) {
	row := r.db.QueryRow(`
		SELECT id, type, name, description, target_species, conditions, skill_level
		FROM equipment WHERE id = ?`, id)

	item, err := scanEquipment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.EquipmentItem{}, entities.ErrNotFound
	}
	if err != nil {
		return entities.EquipmentItem{}, fmt.Errorf("failed to query equipment %s: %w", id, err)
	}
	return item, nil
}

// ListEquipment returns every equipment item ordered by type and name
func (r *SQLiteRepository) ListEquipment() ([]entities.EquipmentItem, error) {
	rows, err := r.db.Query(`
		SELECT id, type, name, description, target_species, conditions, skill_level
		FROM equipment
		ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer rows.Close()

	var result []entities.EquipmentItem
	for rows.Next() {
		item, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return result, nil
}

// CountEquipment returns the number of stored equipment items
func (r *SQLiteRepository) CountEquipment() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM equipment`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count equipment: %w", err)
	}
	return n, nil
}

func scanEquipment(row rowScanner) (entities.EquipmentItem, error) {
	var (
		item                entities.EquipmentItem
		itemType, level     string
		description         sql.NullString
		species, conditions string
	)
	if err := row.Scan(&item.ID, &itemType, &item.Name, &description, &species, &conditions, &level); err != nil {
		return entities.EquipmentItem{}, err
	}

	item.Type = entities.EquipmentType(itemType)
	item.SkillLevel = entities.SkillLevel(level)
	item.Description = description.String

	if err := json.Unmarshal([]byte(species), &item.TargetSpecies); err != nil {
		return entities.EquipmentItem{}, fmt.Errorf("failed to decode species for %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(conditions), &item.Conditions); err != nil {
		return entities.EquipmentItem{}, fmt.Errorf("failed to decode conditions for %s: %w", item.ID, err)
	}
	return item, nil
}
