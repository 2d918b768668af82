package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskdeck/internal/model"
)

// PreferenceRepository stores per-user preferences.
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new PreferenceRepository.
func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the user's preference row, or the dark default when the user
// never saved one. The default is not persisted.
func (r *PreferenceRepository) Get(ctx context.Context, ownerID string) (*model.UserPreference, error) {
	var pref model.UserPreference
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&pref).Error
	switch {
	case err == nil:
		return &pref, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.DefaultPreference(ownerID), nil
	default:
		return nil, fmt.Errorf("find preference: %w", err)
	}
}

// Upsert creates or replaces the user's preference row.
func (r *PreferenceRepository) Upsert(ctx context.Context, ownerID string, theme model.Theme) (*model.UserPreference, error) {
	pref := &model.UserPreference{OwnerID: ownerID, Theme: theme}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"theme", "updated_at"}),
	}).Create(pref).Error
	if err != nil {
		return nil, fmt.Errorf("upsert preference: %w", err)
	}
	return pref, nil
}
