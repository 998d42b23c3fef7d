package repository

import (
	"context"
	"errors"

	"github.com/THF151/booking-backend/internal/models"
	"gorm.io/gorm"
)

type OverrideRepository interface {
	// FindByDate returns the override for (eventID, date) or nil when the
	// date has none. Date is the local calendar day "2006-01-02".
	FindByDate(ctx context.Context, tx *gorm.DB, eventID, date string) (*models.EventOverride, error)
	ListByRange(ctx context.Context, eventID, from, to string) ([]models.EventOverride, error)
}

type overrideRepository struct {
	db *gorm.DB
}

func NewOverrideRepository(db *gorm.DB) OverrideRepository {
	return &overrideRepository{db: db}
}

func (r *overrideRepository) FindByDate(ctx context.Context, tx *gorm.DB, eventID, date string) (*models.EventOverride, error) {
	var override models.EventOverride
	err := tx.WithContext(ctx).
		Where("event_id = ? AND date = ?", eventID, date).
		First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *overrideRepository) ListByRange(ctx context.Context, eventID, from, to string) ([]models.EventOverride, error) {
	var overrides []models.EventOverride
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND date >= ? AND date <= ?", eventID, from, to).
		Order("date ASC").
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}
