package database

import (
	"log"

	"github.com/THF151/booking-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Event{},
		&models.EventOverride{},
		&models.EventSession{},
		&models.Invitee{},
		&models.Booking{},
		&models.Job{},
		&models.NotificationRule{},
		&models.EmailTemplate{},
		&models.MailLog{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Overlap scans for slot computation
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_event_range
		ON bookings (event_id, start_time, end_time)
		WHERE status <> 'cancelled'
	`)

	// Claim-scan support: due pending jobs ordered by execute_at
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_jobs_pending_due
		ON jobs (execute_at)
		WHERE status = 'pending'
	`)

	return db
}
