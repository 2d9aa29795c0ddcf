package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"threadsnet/model"
)

func (s *Store) ListSensitiveWords(ctx context.Context) ([]model.SensitiveWord, error) {
	words := make([]model.SensitiveWord, 0)
	if err := s.conn(ctx).Order("created_at ASC").Find(&words).Error; err != nil {
		return nil, fmt.Errorf("failed to query sensitive words: %w", err)
	}
	return words, nil
}

func (s *Store) AddSensitiveWords(ctx context.Context, words []string) (int, error) {
	added := 0
	for _, w := range words {
		row := &model.SensitiveWord{ID: uuid.New(), Word: w}
		result := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if result.Error != nil {
			return added, fmt.Errorf("failed to add sensitive word: %w", result.Error)
		}
		added += int(result.RowsAffected)
	}
	return added, nil
}

func (s *Store) DeleteSensitiveWord(ctx context.Context, word string) (bool, error) {
	result := s.conn(ctx).Where("LOWER(word) = LOWER(?)", word).Delete(&model.SensitiveWord{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete sensitive word: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) ListSettings(ctx context.Context) ([]model.SystemSettings, error) {
	var settings []model.SystemSettings
	if err := s.conn(ctx).Order("setting_key ASC").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func (s *Store) UpdateSetting(ctx context.Context, key, value string, updatedAt time.Time) (bool, error) {
	result := s.conn(ctx).Model(&model.SystemSettings{}).
		Where("setting_key = ?", key).
		Updates(map[string]interface{}{
			"setting_value": value,
			"updated_at":    updatedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update setting: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) EnsureSettings(ctx context.Context, defaults []model.SystemSettings) error {
	for _, d := range defaults {
		row := d
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		err := s.conn(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "setting_key"}}, DoNothing: true}).
			Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", d.SettingKey, err)
		}
	}
	return nil
}
