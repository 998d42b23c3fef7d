package repository

import (
	"context"
	"errors"

	"github.com/THF151/booking-backend/internal/models"
	"gorm.io/gorm"
)

// ErrTokenConsumed signals that the conditional active -> used update hit
// zero rows: a concurrent booking already burned the token.
var ErrTokenConsumed = errors.New("invitee token already consumed")

type InviteeRepository interface {
	FindByToken(ctx context.Context, token string) (*models.Invitee, error)
	FindByID(ctx context.Context, tenantID, id string) (*models.Invitee, error)
	// Burn transitions the token active -> used, conditioned on it still
	// being active. Returns ErrTokenConsumed when nothing changed.
	Burn(ctx context.Context, tx *gorm.DB, token string) error
	Reactivate(ctx context.Context, tx *gorm.DB, id string) error
}

type inviteeRepository struct {
	db *gorm.DB
}

func NewInviteeRepository(db *gorm.DB) InviteeRepository {
	return &inviteeRepository{db: db}
}

func (r *inviteeRepository) FindByToken(ctx context.Context, token string) (*models.Invitee, error) {
	var invitee models.Invitee
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&invitee).Error; err != nil {
		return nil, err
	}
	return &invitee, nil
}

func (r *inviteeRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Invitee, error) {
	var invitee models.Invitee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invitee).Error
	if err != nil {
		return nil, err
	}
	return &invitee, nil
}

func (r *inviteeRepository) Burn(ctx context.Context, tx *gorm.DB, token string) error {
	result := tx.WithContext(ctx).
		Model(&models.Invitee{}).
		Where("token = ? AND status = ?", token, models.InviteeActive).
		Update("status", models.InviteeUsed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenConsumed
	}
	return nil
}

func (r *inviteeRepository) Reactivate(ctx context.Context, tx *gorm.DB, id string) error {
	return tx.WithContext(ctx).
		Model(&models.Invitee{}).
		Where("id = ? AND status = ?", id, models.InviteeUsed).
		Update("status", models.InviteeActive).Error
}
