package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/THF151/booking-backend/internal/models"
	"github.com/THF151/booking-backend/internal/repository"
)

// NotificationScheduler derives notification jobs from an event's active
// rules. Jobs only carry a type and timing; the rule and template that
// apply are re-resolved at dispatch time so that rule edits between
// scheduling and dispatch still take effect.
type NotificationScheduler struct {
	commRepo repository.CommunicationRepository
}

func NewNotificationScheduler(commRepo repository.CommunicationRepository) *NotificationScheduler {
	return &NotificationScheduler{commRepo: commRepo}
}

// BookingJobs derives the jobs owed to a fresh booking: an immediate
// confirmation when an ON_BOOKING rule exists, plus one reminder per
// reminder rule whose computed time is still in the future. Reminders
// whose time has already passed are never created.
func (s *NotificationScheduler) BookingJobs(ctx context.Context, event *models.Event, booking *models.Booking, now time.Time) ([]models.Job, error) {
	rules, err := s.commRepo.ListRulesByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	var jobs []models.Job
	for _, rule := range rules {
		if rule.Trigger == models.TriggerOnBooking {
			jobs = append(jobs, *models.NewJob(models.JobConfirmation, booking.ID, booking.TenantID, now))
			continue
		}
		if lead, ok := ParseReminderTrigger(rule.Trigger); ok {
			remindAt := booking.StartTime.Add(-lead)
			if remindAt.After(now) {
				jobs = append(jobs, *models.NewJob(models.JobReminder, booking.ID, booking.TenantID, remindAt))
			}
		}
	}
	return jobs, nil
}

// ReminderJobs re-derives only the reminder jobs, used after a reschedule
// has moved the booking's start.
func (s *NotificationScheduler) ReminderJobs(ctx context.Context, event *models.Event, booking *models.Booking, now time.Time) ([]models.Job, error) {
	rules, err := s.commRepo.ListRulesByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	var jobs []models.Job
	for _, rule := range rules {
		lead, ok := ParseReminderTrigger(rule.Trigger)
		if !ok {
			continue
		}
		remindAt := booking.StartTime.Add(-lead)
		if remindAt.After(now) {
			jobs = append(jobs, *models.NewJob(models.JobReminder, booking.ID, booking.TenantID, remindAt))
		}
	}
	return jobs, nil
}

// CancellationJobs returns an immediate cancellation job when any
// ON_CANCEL rule applies to the event or its tenant.
func (s *NotificationScheduler) CancellationJobs(ctx context.Context, event *models.Event, booking *models.Booking, now time.Time) ([]models.Job, error) {
	return s.lifecycleJobs(ctx, event, booking, now, models.TriggerOnCancel, models.JobCancellation)
}

// RescheduleJobs returns an immediate reschedule-notification job when
// any ON_RESCHEDULE rule applies.
func (s *NotificationScheduler) RescheduleJobs(ctx context.Context, event *models.Event, booking *models.Booking, now time.Time) ([]models.Job, error) {
	return s.lifecycleJobs(ctx, event, booking, now, models.TriggerOnReschedule, models.JobReschedule)
}

func (s *NotificationScheduler) lifecycleJobs(ctx context.Context, event *models.Event, booking *models.Booking, now time.Time, trigger string, jobType models.JobType) ([]models.Job, error) {
	rules, err := s.commRepo.ListRulesByTrigger(ctx, booking.TenantID, &event.ID, trigger)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return []models.Job{*models.NewJob(jobType, booking.ID, booking.TenantID, now)}, nil
}

// ParseReminderTrigger parses REMINDER_<N>H / REMINDER_<N>M triggers into
// the lead duration before the booking start.
func ParseReminderTrigger(trigger string) (time.Duration, bool) {
	rest, found := strings.CutPrefix(trigger, "REMINDER_")
	if !found || len(rest) < 2 {
		return 0, false
	}

	unit := rest[len(rest)-1]
	n, err := strconv.Atoi(rest[:len(rest)-1])
	if err != nil || n <= 0 {
		return 0, false
	}

	switch unit {
	case 'H':
		return time.Duration(n) * time.Hour, true
	case 'M':
		return time.Duration(n) * time.Minute, true
	}
	return 0, false
}
