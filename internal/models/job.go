package models

import (
	"time"

	"github.com/google/uuid"
)

type JobType string

const (
	JobConfirmation JobType = "confirmation"
	JobReminder     JobType = "reminder"
	JobCancellation JobType = "cancellation"
	JobReschedule   JobType = "reschedule"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
)

// Job is one unit of deferred notification work. TargetID references the
// booking the notification is about. Jobs are append-only apart from
// status transitions; a failed job is retried only by inserting a new row.
type Job struct {
	ID       string  `gorm:"type:uuid;primaryKey" json:"id"`
	Type     JobType `gorm:"type:varchar(30);not null;column:job_type" json:"job_type"`
	TargetID string  `gorm:"type:uuid;not null;index" json:"target_id"`
	TenantID string  `gorm:"not null;index" json:"tenant_id"`

	ExecuteAt time.Time `gorm:"not null;index" json:"execute_at"`

	Status       JobStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewJob(t JobType, targetID, tenantID string, executeAt time.Time) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Type:      t,
		TargetID:  targetID,
		TenantID:  tenantID,
		ExecuteAt: executeAt,
		Status:    JobPending,
	}
}
