package repository

import (
	"context"
	"time"

	"github.com/THF151/booking-backend/internal/models"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, tx *gorm.DB, job *models.Job) error
	CreateBatch(ctx context.Context, tx *gorm.DB, jobs []models.Job) error
	// ClaimPending atomically moves up to limit due pending jobs to
	// processing and returns them. Safe under concurrent claimants: the
	// selection locks rows and skips those locked by another claimant, so
	// no two callers ever receive the same job.
	ClaimPending(ctx context.Context, limit int) ([]models.Job, error)
	UpdateStatus(ctx context.Context, id string, status models.JobStatus, errorMessage *string) error
	// CancelForBooking cancels the booking's jobs that are still pending;
	// jobs already claimed run to completion.
	CancelForBooking(ctx context.Context, tx *gorm.DB, bookingID string) error
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]models.Job, error)
	GetDB() *gorm.DB
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *jobRepository) Create(ctx context.Context, tx *gorm.DB, job *models.Job) error {
	return tx.WithContext(ctx).Create(job).Error
}

func (r *jobRepository) CreateBatch(ctx context.Context, tx *gorm.DB, jobs []models.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&jobs).Error
}

func (r *jobRepository) ClaimPending(ctx context.Context, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).Raw(`
		UPDATE jobs
		SET status = ?, updated_at = ?
		WHERE id IN (
			SELECT id FROM jobs
			WHERE status = ? AND execute_at <= ?
			ORDER BY execute_at ASC
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		models.JobProcessing, time.Now().UTC(),
		models.JobPending, time.Now().UTC(), limit,
	).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id string, status models.JobStatus, errorMessage *string) error {
	return r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "error_message": errorMessage}).Error
}

func (r *jobRepository) CancelForBooking(ctx context.Context, tx *gorm.DB, bookingID string) error {
	return tx.WithContext(ctx).
		Model(&models.Job{}).
		Where("target_id = ? AND status = ?", bookingID, models.JobPending).
		Update("status", models.JobCancelled).Error
}

func (r *jobRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
