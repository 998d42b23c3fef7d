package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/THF151/booking-backend/internal/availability"
	"github.com/THF151/booking-backend/internal/models"
	"github.com/THF151/booking-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrEventClosed        = errors.New("event is closed for booking")
	ErrTokenRequired      = errors.New("access token required for restricted event")
	ErrTokenInvalid       = errors.New("access token invalid for this event")
	ErrTokenUsed          = errors.New("access token already used")
	ErrInvalidDate        = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidTime        = errors.New("invalid time format, expected HH:MM or RFC 3339")
	ErrUnresolvableTime   = errors.New("requested local time does not map to exactly one instant")
	ErrPastBooking        = errors.New("cannot book in the past")
	ErrOutsideActive      = errors.New("booking outside of event active range")
	ErrDateUnavailable    = errors.New("date is unavailable")
	ErrSlotUnavailable    = errors.New("selected time slot is not available")
	ErrBookingCancelled   = errors.New("booking is already cancelled")
	ErrCancelDisabled     = errors.New("cancellation is disabled for this event")
	ErrRescheduleDisabled = errors.New("rescheduling is disabled for this event")
)

// EventPublisher emits booking lifecycle messages. Publishing is best
// effort and never fails a booking operation.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type CreateBookingInput struct {
	Date  string
	Time  string
	Name  string
	Email string
	Note  *string
	Token *string
}

type BookingService interface {
	GetSlots(ctx context.Context, tenantID, slug, date string) ([]time.Time, error)
	CreateBooking(ctx context.Context, tenantID, slug string, in CreateBookingInput) (*models.Booking, error)
	GetManagedBooking(ctx context.Context, token string) (*models.Booking, *models.Event, error)
	CancelByToken(ctx context.Context, token string) (*models.Booking, error)
	RescheduleByToken(ctx context.Context, token, date, timeOfDay string) (*models.Booking, error)
	ListBookings(ctx context.Context, tenantID, slug string) ([]models.Booking, error)
}

type bookingService struct {
	eventRepo    repository.EventRepository
	bookingRepo  repository.BookingRepository
	overrideRepo repository.OverrideRepository
	sessionRepo  repository.SessionRepository
	inviteeRepo  repository.InviteeRepository
	jobRepo      repository.JobRepository
	scheduler    *NotificationScheduler
	publisher    EventPublisher
}

func NewBookingService(
	eventRepo repository.EventRepository,
	bookingRepo repository.BookingRepository,
	overrideRepo repository.OverrideRepository,
	sessionRepo repository.SessionRepository,
	inviteeRepo repository.InviteeRepository,
	jobRepo repository.JobRepository,
	scheduler *NotificationScheduler,
	publisher EventPublisher,
) BookingService {
	return &bookingService{
		eventRepo:    eventRepo,
		bookingRepo:  bookingRepo,
		overrideRepo: overrideRepo,
		sessionRepo:  sessionRepo,
		inviteeRepo:  inviteeRepo,
		jobRepo:      jobRepo,
		scheduler:    scheduler,
		publisher:    publisher,
	}
}

func (s *bookingService) GetSlots(ctx context.Context, tenantID, slug, date string) ([]time.Time, error) {
	event, err := s.eventRepo.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, ErrEventNotFound
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	loc := event.Loc()
	dayStart, dayEnd := availability.DayBounds(day, loc)

	db := s.bookingRepo.GetDB()
	bookings, err := s.bookingRepo.ListActiveByRange(ctx, db, event.ID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	var override *models.EventOverride
	var sessions []models.EventSession
	if event.ScheduleType == models.ScheduleManual {
		if sessions, err = s.sessionRepo.ListByRange(ctx, db, event.ID, dayStart, dayEnd); err != nil {
			return nil, err
		}
	} else {
		if override, err = s.overrideRepo.FindByDate(ctx, db, event.ID, date); err != nil {
			return nil, err
		}
	}

	return availability.CalculateSlots(event, day, time.Now().UTC(), bookings, override, sessions), nil
}

func (s *bookingService) CreateBooking(ctx context.Context, tenantID, slug string, in CreateBookingInput) (*models.Booking, error) {
	event, err := s.eventRepo.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, ErrEventNotFound
	}

	var invitee *models.Invitee
	switch event.AccessMode {
	case models.AccessClosed:
		return nil, ErrEventClosed
	case models.AccessRestricted:
		if in.Token == nil || *in.Token == "" {
			return nil, ErrTokenRequired
		}
		invitee, err = s.inviteeRepo.FindByToken(ctx, *in.Token)
		if err != nil || invitee.EventID != event.ID {
			return nil, ErrTokenInvalid
		}
		if invitee.Status != models.InviteeActive {
			return nil, ErrTokenUsed
		}
	}

	now := time.Now().UTC()
	loc := event.Loc()

	day, start, err := parseRequested(in.Date, in.Time, loc)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(event.DurationMin) * time.Minute)

	if start.Before(now) {
		return nil, ErrPastBooking
	}
	if start.Before(event.ActiveStart) || end.After(event.ActiveEnd) {
		return nil, ErrOutsideActive
	}

	var created *models.Booking
	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The event-row lock serializes concurrent booking writers for
		// this event; the slot re-validation below therefore sees every
		// committed booking, which keeps the capacity bound sound at any
		// capacity.
		if _, err := s.eventRepo.FindByIDForUpdate(ctx, tx, event.ID); err != nil {
			return ErrEventNotFound
		}

		dayStart, dayEnd := availability.DayBounds(day, loc)
		bookings, err := s.bookingRepo.ListActiveByRange(ctx, tx, event.ID, dayStart, dayEnd)
		if err != nil {
			return err
		}

		var override *models.EventOverride
		var sessions []models.EventSession
		var location *string

		if event.ScheduleType == models.ScheduleManual {
			if sessions, err = s.sessionRepo.ListByRange(ctx, tx, event.ID, dayStart, dayEnd); err != nil {
				return err
			}
			session := findSessionAt(sessions, start)
			if session == nil {
				return ErrSlotUnavailable
			}
			// Sessions may outlast the configured duration.
			end = session.EndTime
			location = session.Location
		} else {
			if override, err = s.overrideRepo.FindByDate(ctx, tx, event.ID, in.Date); err != nil {
				return err
			}
			if override != nil {
				if override.IsUnavailable {
					return ErrDateUnavailable
				}
				if override.Location != nil {
					location = override.Location
				}
			}
		}

		slots := availability.CalculateSlots(event, day, now, bookings, override, sessions)
		if !containsInstant(slots, start) {
			return ErrSlotUnavailable
		}

		var inviteeID *string
		if invitee != nil {
			if err := s.inviteeRepo.Burn(ctx, tx, *in.Token); err != nil {
				if errors.Is(err, repository.ErrTokenConsumed) {
					return ErrTokenUsed
				}
				return err
			}
			inviteeID = &invitee.ID
		}

		booking := models.NewBooking(models.NewBookingParams{
			TenantID:  tenantID,
			EventID:   event.ID,
			Start:     start,
			End:       end,
			Name:      in.Name,
			Email:     in.Email,
			Note:      in.Note,
			InviteeID: inviteeID,
			Location:  location,
		})
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}

		jobs, err := s.scheduler.BookingJobs(ctx, event, booking, now)
		if err != nil {
			return err
		}
		if err := s.jobRepo.CreateBatch(ctx, tx, jobs); err != nil {
			return err
		}

		created = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("booking.created", created)
	return created, nil
}

func (s *bookingService) GetManagedBooking(ctx context.Context, token string) (*models.Booking, *models.Event, error) {
	booking, err := s.bookingRepo.FindByManagementToken(ctx, token)
	if err != nil {
		return nil, nil, ErrBookingNotFound
	}
	if booking.Status == models.StatusCancelled {
		return nil, nil, ErrBookingCancelled
	}
	event, err := s.eventRepo.FindByID(ctx, booking.TenantID, booking.EventID)
	if err != nil {
		return nil, nil, ErrEventNotFound
	}
	return booking, event, nil
}

func (s *bookingService) CancelByToken(ctx context.Context, token string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByManagementToken(ctx, token)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status == models.StatusCancelled {
		return booking, nil
	}

	event, err := s.eventRepo.FindByID(ctx, booking.TenantID, booking.EventID)
	if err != nil {
		return nil, ErrEventNotFound
	}
	if !event.AllowCustomerCancel {
		return nil, ErrCancelDisabled
	}

	now := time.Now().UTC()
	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.bookingRepo.UpdateStatus(ctx, tx, booking.ID, models.StatusCancelled); err != nil {
			return err
		}
		if booking.InviteeID != nil {
			if err := s.inviteeRepo.Reactivate(ctx, tx, *booking.InviteeID); err != nil {
				return err
			}
		}
		if err := s.jobRepo.CancelForBooking(ctx, tx, booking.ID); err != nil {
			return err
		}
		jobs, err := s.scheduler.CancellationJobs(ctx, event, booking, now)
		if err != nil {
			return err
		}
		return s.jobRepo.CreateBatch(ctx, tx, jobs)
	})
	if err != nil {
		return nil, err
	}

	booking.Status = models.StatusCancelled
	s.publish("booking.cancelled", booking)
	return booking, nil
}

func (s *bookingService) RescheduleByToken(ctx context.Context, token, date, timeOfDay string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByManagementToken(ctx, token)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status == models.StatusCancelled {
		return nil, ErrBookingCancelled
	}

	event, err := s.eventRepo.FindByID(ctx, booking.TenantID, booking.EventID)
	if err != nil {
		return nil, ErrEventNotFound
	}
	if !event.AllowCustomerReschedule {
		return nil, ErrRescheduleDisabled
	}

	now := time.Now().UTC()
	loc := event.Loc()

	day, newStart, err := parseRequested(date, timeOfDay, loc)
	if err != nil {
		return nil, err
	}
	newEnd := newStart.Add(time.Duration(event.DurationMin) * time.Minute)

	if newStart.Before(now) {
		return nil, ErrPastBooking
	}
	if newStart.Before(event.ActiveStart) || newEnd.After(event.ActiveEnd) {
		return nil, ErrOutsideActive
	}

	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.eventRepo.FindByIDForUpdate(ctx, tx, event.ID); err != nil {
			return ErrEventNotFound
		}

		dayStart, dayEnd := availability.DayBounds(day, loc)
		bookings, err := s.bookingRepo.ListActiveByRange(ctx, tx, event.ID, dayStart, dayEnd)
		if err != nil {
			return err
		}

		var override *models.EventOverride
		var sessions []models.EventSession
		var location *string

		if event.ScheduleType == models.ScheduleManual {
			if sessions, err = s.sessionRepo.ListByRange(ctx, tx, event.ID, dayStart, dayEnd); err != nil {
				return err
			}
			session := findSessionAt(sessions, newStart)
			if session == nil {
				return ErrSlotUnavailable
			}
			newEnd = session.EndTime
			location = session.Location
		} else {
			if override, err = s.overrideRepo.FindByDate(ctx, tx, event.ID, date); err != nil {
				return err
			}
			if override != nil {
				if override.IsUnavailable {
					return ErrDateUnavailable
				}
				if override.Location != nil {
					location = override.Location
				}
			}
		}

		// The booking being moved still occupies its old slot; it does
		// not block its own target day unless the two overlap.
		slots := availability.CalculateSlots(event, day, now, excludeBooking(bookings, booking.ID), override, sessions)
		if !containsInstant(slots, newStart) {
			return ErrSlotUnavailable
		}

		booking.StartTime = newStart
		booking.EndTime = newEnd
		booking.Location = location
		if err := s.bookingRepo.Update(ctx, tx, booking); err != nil {
			return err
		}

		if err := s.jobRepo.CancelForBooking(ctx, tx, booking.ID); err != nil {
			return err
		}
		rescheduleJobs, err := s.scheduler.RescheduleJobs(ctx, event, booking, now)
		if err != nil {
			return err
		}
		reminders, err := s.scheduler.ReminderJobs(ctx, event, booking, now)
		if err != nil {
			return err
		}
		return s.jobRepo.CreateBatch(ctx, tx, append(rescheduleJobs, reminders...))
	})
	if err != nil {
		return nil, err
	}

	s.publish("booking.rescheduled", booking)
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, tenantID, slug string) ([]models.Booking, error) {
	event, err := s.eventRepo.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, ErrEventNotFound
	}
	return s.bookingRepo.ListByEvent(ctx, tenantID, event.ID)
}

func (s *bookingService) publish(routingKey string, booking *models.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, booking); err != nil {
		log.Printf("[BookingService] publish %s failed: %v", routingKey, err)
	}
}

// parseRequested turns the request's (date, time) pair into the local
// calendar day and the UTC start instant. The time accepts a bare clock
// reading or a full RFC 3339 timestamp, which is converted into the
// event's timezone first.
func parseRequested(date, timeOfDay string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}

	var hour, minute int
	if hasDesignator(timeOfDay) {
		t, err := time.Parse(time.RFC3339, timeOfDay)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidTime
		}
		local := t.In(loc)
		hour, minute = local.Hour(), local.Minute()
	} else {
		t, err := time.Parse("15:04", timeOfDay)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidTime
		}
		hour, minute = t.Hour(), t.Minute()
	}

	local, ok := availability.ResolveLocalTime(day, hour, minute, loc)
	if !ok {
		return time.Time{}, time.Time{}, ErrUnresolvableTime
	}
	return day, local.UTC(), nil
}

func hasDesignator(s string) bool {
	for _, r := range s {
		if r == 'T' {
			return true
		}
	}
	return false
}

func containsInstant(slots []time.Time, t time.Time) bool {
	for _, s := range slots {
		if s.Equal(t) {
			return true
		}
	}
	return false
}

func findSessionAt(sessions []models.EventSession, start time.Time) *models.EventSession {
	for i := range sessions {
		if sessions[i].StartTime.Equal(start) {
			return &sessions[i]
		}
	}
	return nil
}

func excludeBooking(bookings []models.Booking, id string) []models.Booking {
	out := bookings[:0:0]
	for _, b := range bookings {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}
