package service

import (
	"context"
	"testing"
	"time"

	"github.com/THF151/booking-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens an in-memory database so the service's transaction wrapper
// has something real to begin and commit against. All queries inside the
// transaction go through the mocks below.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

// --- Mock EventRepository ---

type mockEventRepo struct {
	findByIDFn          func(ctx context.Context, tenantID, id string) (*models.Event, error)
	findBySlugFn        func(ctx context.Context, tenantID, slug string) (*models.Event, error)
	findByIDForUpdateFn func(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error)
}

func (m *mockEventRepo) FindByID(ctx context.Context, tenantID, id string) (*models.Event, error) {
	return m.findByIDFn(ctx, tenantID, id)
}
func (m *mockEventRepo) FindBySlug(ctx context.Context, tenantID, slug string) (*models.Event, error) {
	return m.findBySlugFn(ctx, tenantID, slug)
}
func (m *mockEventRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error) {
	return m.findByIDForUpdateFn(ctx, tx, id)
}

// --- Mock BookingRepository ---

type mockBookingRepo struct {
	db *gorm.DB

	createFn            func(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	findByIDFn          func(ctx context.Context, tenantID, id string) (*models.Booking, error)
	findByTokenFn       func(ctx context.Context, token string) (*models.Booking, error)
	listByEventFn       func(ctx context.Context, tenantID, eventID string) ([]models.Booking, error)
	listActiveByRangeFn func(ctx context.Context, tx *gorm.DB, eventID string, start, end time.Time) ([]models.Booking, error)
	countOverlapFn      func(ctx context.Context, eventID string, start, end time.Time) (int64, error)
	updateFn            func(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	updateStatusFn      func(ctx context.Context, tx *gorm.DB, id string, status models.BookingStatus) error
}

func (m *mockBookingRepo) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return m.createFn(ctx, tx, booking)
}
func (m *mockBookingRepo) FindByID(ctx context.Context, tenantID, id string) (*models.Booking, error) {
	return m.findByIDFn(ctx, tenantID, id)
}
func (m *mockBookingRepo) FindByManagementToken(ctx context.Context, token string) (*models.Booking, error) {
	return m.findByTokenFn(ctx, token)
}
func (m *mockBookingRepo) ListByEvent(ctx context.Context, tenantID, eventID string) ([]models.Booking, error) {
	return m.listByEventFn(ctx, tenantID, eventID)
}
func (m *mockBookingRepo) ListActiveByRange(ctx context.Context, tx *gorm.DB, eventID string, start, end time.Time) ([]models.Booking, error) {
	if m.listActiveByRangeFn == nil {
		return nil, nil
	}
	return m.listActiveByRangeFn(ctx, tx, eventID, start, end)
}
func (m *mockBookingRepo) CountOverlap(ctx context.Context, eventID string, start, end time.Time) (int64, error) {
	return m.countOverlapFn(ctx, eventID, start, end)
}
func (m *mockBookingRepo) Update(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return m.updateFn(ctx, tx, booking)
}
func (m *mockBookingRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.BookingStatus) error {
	return m.updateStatusFn(ctx, tx, id, status)
}
func (m *mockBookingRepo) GetDB() *gorm.DB {
	return m.db
}

// --- Mock OverrideRepository ---

type mockOverrideRepo struct {
	findByDateFn func(ctx context.Context, tx *gorm.DB, eventID, date string) (*models.EventOverride, error)
}

func (m *mockOverrideRepo) FindByDate(ctx context.Context, tx *gorm.DB, eventID, date string) (*models.EventOverride, error) {
	if m.findByDateFn == nil {
		return nil, nil
	}
	return m.findByDateFn(ctx, tx, eventID, date)
}
func (m *mockOverrideRepo) ListByRange(ctx context.Context, eventID, from, to string) ([]models.EventOverride, error) {
	return nil, nil
}

// --- Mock SessionRepository ---

type mockSessionRepo struct {
	listByRangeFn func(ctx context.Context, tx *gorm.DB, eventID string, start, end time.Time) ([]models.EventSession, error)
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.EventSession, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockSessionRepo) ListByRange(ctx context.Context, tx *gorm.DB, eventID string, start, end time.Time) ([]models.EventSession, error) {
	if m.listByRangeFn == nil {
		return nil, nil
	}
	return m.listByRangeFn(ctx, tx, eventID, start, end)
}

// --- Mock InviteeRepository ---

type mockInviteeRepo struct {
	findByTokenFn func(ctx context.Context, token string) (*models.Invitee, error)
	burnFn        func(ctx context.Context, tx *gorm.DB, token string) error
	reactivateFn  func(ctx context.Context, tx *gorm.DB, id string) error
}

func (m *mockInviteeRepo) FindByToken(ctx context.Context, token string) (*models.Invitee, error) {
	return m.findByTokenFn(ctx, token)
}
func (m *mockInviteeRepo) FindByID(ctx context.Context, tenantID, id string) (*models.Invitee, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockInviteeRepo) Burn(ctx context.Context, tx *gorm.DB, token string) error {
	return m.burnFn(ctx, tx, token)
}
func (m *mockInviteeRepo) Reactivate(ctx context.Context, tx *gorm.DB, id string) error {
	return m.reactivateFn(ctx, tx, id)
}

// --- Mock JobRepository ---

type mockJobRepo struct {
	db *gorm.DB

	createBatchFn      func(ctx context.Context, tx *gorm.DB, jobs []models.Job) error
	cancelForBookingFn func(ctx context.Context, tx *gorm.DB, bookingID string) error
	listByTenantFn     func(ctx context.Context, tenantID string, limit int) ([]models.Job, error)
}

func (m *mockJobRepo) Create(ctx context.Context, tx *gorm.DB, job *models.Job) error {
	return m.CreateBatch(ctx, tx, []models.Job{*job})
}
func (m *mockJobRepo) CreateBatch(ctx context.Context, tx *gorm.DB, jobs []models.Job) error {
	if m.createBatchFn == nil {
		return nil
	}
	return m.createBatchFn(ctx, tx, jobs)
}
func (m *mockJobRepo) ClaimPending(ctx context.Context, limit int) ([]models.Job, error) {
	return nil, nil
}
func (m *mockJobRepo) UpdateStatus(ctx context.Context, id string, status models.JobStatus, errorMessage *string) error {
	return nil
}
func (m *mockJobRepo) CancelForBooking(ctx context.Context, tx *gorm.DB, bookingID string) error {
	if m.cancelForBookingFn == nil {
		return nil
	}
	return m.cancelForBookingFn(ctx, tx, bookingID)
}
func (m *mockJobRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]models.Job, error) {
	return m.listByTenantFn(ctx, tenantID, limit)
}
func (m *mockJobRepo) GetDB() *gorm.DB {
	return m.db
}

// --- Mock CommunicationRepository ---

type mockCommRepo struct {
	rulesByEvent   []models.NotificationRule
	rulesByTrigger map[string][]models.NotificationRule
}

func (m *mockCommRepo) ListRulesByEvent(ctx context.Context, eventID string) ([]models.NotificationRule, error) {
	return m.rulesByEvent, nil
}
func (m *mockCommRepo) ListRulesByTrigger(ctx context.Context, tenantID string, eventID *string, trigger string) ([]models.NotificationRule, error) {
	return m.rulesByTrigger[trigger], nil
}
func (m *mockCommRepo) GetTemplate(ctx context.Context, id string) (*models.EmailTemplate, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockCommRepo) HasMailBeenSent(ctx context.Context, recipient, templateKey, contextHash string) (bool, error) {
	return false, nil
}
func (m *mockCommRepo) AppendMailLog(ctx context.Context, log *models.MailLog) error {
	return nil
}
