package repository

import (
	"context"
	"time"

	"github.com/THF151/booking-backend/internal/models"
	"gorm.io/gorm"
)

type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.EventSession, error)
	// ListByRange returns sessions overlapping [start, end).
	ListByRange(ctx context.Context, tx *gorm.DB, eventID string, start, end time.Time) ([]models.EventSession, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*models.EventSession, error) {
	var session models.EventSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListByRange(ctx context.Context, tx *gorm.DB, eventID string, start, end time.Time) ([]models.EventSession, error) {
	var sessions []models.EventSession
	err := tx.WithContext(ctx).
		Where("event_id = ? AND start_time < ? AND end_time > ?", eventID, end, start).
		Order("start_time ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
