package repository

import (
	"context"

	"github.com/THF151/booking-backend/internal/models"
	"gorm.io/gorm"
)

type CommunicationRepository interface {
	ListRulesByEvent(ctx context.Context, eventID string) ([]models.NotificationRule, error)
	// ListRulesByTrigger returns active rules for the trigger, preferring
	// event-bound rules and falling back to tenant-wide ones.
	ListRulesByTrigger(ctx context.Context, tenantID string, eventID *string, trigger string) ([]models.NotificationRule, error)
	GetTemplate(ctx context.Context, id string) (*models.EmailTemplate, error)
	HasMailBeenSent(ctx context.Context, recipient, templateKey, contextHash string) (bool, error)
	AppendMailLog(ctx context.Context, log *models.MailLog) error
}

type communicationRepository struct {
	db *gorm.DB
}

func NewCommunicationRepository(db *gorm.DB) CommunicationRepository {
	return &communicationRepository{db: db}
}

func (r *communicationRepository) ListRulesByEvent(ctx context.Context, eventID string) ([]models.NotificationRule, error) {
	var rules []models.NotificationRule
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND is_active = ?", eventID, true).
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *communicationRepository) ListRulesByTrigger(ctx context.Context, tenantID string, eventID *string, trigger string) ([]models.NotificationRule, error) {
	var rules []models.NotificationRule
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND trigger_type = ? AND is_active = ?", tenantID, trigger, true)
	if eventID != nil {
		q = q.Where("event_id = ? OR event_id IS NULL", *eventID).
			Order("event_id ASC NULLS LAST")
	} else {
		q = q.Where("event_id IS NULL")
	}
	if err := q.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *communicationRepository) GetTemplate(ctx context.Context, id string) (*models.EmailTemplate, error) {
	var template models.EmailTemplate
	if err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *communicationRepository) HasMailBeenSent(ctx context.Context, recipient, templateKey, contextHash string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MailLog{}).
		Where("recipient = ? AND template_key = ? AND context_hash = ? AND status = ?",
			recipient, templateKey, contextHash, models.MailSent).
		Count(&count).Error
	return count > 0, err
}

func (r *communicationRepository) AppendMailLog(ctx context.Context, log *models.MailLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
