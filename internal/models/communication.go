package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification rule triggers. Reminder triggers follow the pattern
// REMINDER_<N>H or REMINDER_<N>M where N is the lead time.
const (
	TriggerOnBooking    = "ON_BOOKING"
	TriggerOnCancel     = "ON_CANCEL"
	TriggerOnReschedule = "ON_RESCHEDULE"
	TriggerReminder24H  = "REMINDER_24H"
	TriggerReminder1H   = "REMINDER_1H"
)

// NotificationRule binds a lifecycle trigger to an email template, either
// for a single event or tenant-wide (nil EventID).
type NotificationRule struct {
	ID         string  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   string  `gorm:"not null;index" json:"tenant_id"`
	EventID    *string `gorm:"type:uuid;index" json:"event_id,omitempty"`
	Trigger    string  `gorm:"not null;column:trigger_type" json:"trigger_type"`
	TemplateID string  `gorm:"type:uuid;not null" json:"template_id"`
	IsActive   bool    `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

func NewNotificationRule(tenantID string, eventID *string, trigger, templateID string) *NotificationRule {
	return &NotificationRule{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		EventID:    eventID,
		Trigger:    trigger,
		TemplateID: templateID,
		IsActive:   true,
	}
}

// EmailTemplate holds the subject and HTML body templates rendered at
// dispatch time. Name doubles as the ledger's template key.
type EmailTemplate struct {
	ID       string  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID string  `gorm:"not null;index" json:"tenant_id"`
	EventID  *string `gorm:"type:uuid" json:"event_id,omitempty"`
	Name     string  `gorm:"not null" json:"name"`

	SubjectTemplate string `gorm:"not null" json:"subject_template"`
	BodyTemplate    string `gorm:"not null" json:"body_template"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MailLogStatus string

const (
	MailSent             MailLogStatus = "sent"
	MailSkippedDuplicate MailLogStatus = "skipped_duplicate"
)

// MailLog is the append-only delivery ledger. A (recipient, template,
// context hash) triple with status "sent" means that exact rendering has
// gone out and must not be sent again.
type MailLog struct {
	ID          string        `gorm:"type:uuid;primaryKey" json:"id"`
	JobID       string        `gorm:"type:uuid;not null;index" json:"job_id"`
	Recipient   string        `gorm:"not null;index" json:"recipient"`
	TemplateKey string        `gorm:"not null" json:"template_key"`
	ContextHash string        `gorm:"not null;index" json:"context_hash"`
	SentAt      time.Time     `gorm:"not null" json:"sent_at"`
	Status      MailLogStatus `gorm:"type:varchar(30);not null" json:"status"`
}

func NewMailLog(jobID, recipient, templateKey, hash string, status MailLogStatus) *MailLog {
	return &MailLog{
		ID:          uuid.NewString(),
		JobID:       jobID,
		Recipient:   recipient,
		TemplateKey: templateKey,
		ContextHash: hash,
		SentAt:      time.Now().UTC(),
		Status:      status,
	}
}
