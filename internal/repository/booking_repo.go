package repository

import (
	"context"
	"time"

	"github.com/THF151/booking-backend/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, tenantID, id string) (*models.Booking, error)
	FindByManagementToken(ctx context.Context, token string) (*models.Booking, error)
	ListByEvent(ctx context.Context, tenantID, eventID string) ([]models.Booking, error)
	// ListActiveByRange returns non-cancelled bookings overlapping
	// [start, end). Pass GetDB() when no transaction is open.
	ListActiveByRange(ctx context.Context, tx *gorm.DB, eventID string, start, end time.Time) ([]models.Booking, error)
	CountOverlap(ctx context.Context, eventID string, start, end time.Time) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.BookingStatus) error
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByManagementToken(ctx context.Context, token string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("management_token = ?", token).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) ListByEvent(ctx context.Context, tenantID, eventID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) ListActiveByRange(ctx context.Context, tx *gorm.DB, eventID string, start, end time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := tx.WithContext(ctx).
		Where("event_id = ? AND start_time < ? AND end_time > ? AND status <> ?",
			eventID, end, start, models.StatusCancelled).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) CountOverlap(ctx context.Context, eventID string, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("event_id = ? AND start_time < ? AND end_time > ? AND status <> ?",
			eventID, end, start, models.StatusCancelled).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) Update(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Save(booking).Error
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.BookingStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("status", status).Error
}
