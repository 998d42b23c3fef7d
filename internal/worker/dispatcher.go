// Package worker runs the background dispatch loop that turns claimed
// jobs into at-most-once email deliveries.
package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/THF151/booking-backend/internal/models"
	"github.com/THF151/booking-backend/internal/repository"
	"github.com/THF151/booking-backend/pkg/email"
	"github.com/THF151/booking-backend/pkg/ics"
)

type Options struct {
	// PollInterval between claim passes.
	PollInterval time.Duration
	// BatchSize is the maximum number of jobs claimed per pass.
	BatchSize int
	// FrontendURL prefixes the manage/book links rendered into emails.
	FrontendURL string
}

// Dispatcher claims due jobs and delivers their notifications. Several
// dispatchers may run against the same database; the claim query
// guarantees disjoint batches. A job either completes or fails
// terminally — retries require a new job row.
type Dispatcher struct {
	jobs     repository.JobRepository
	bookings repository.BookingRepository
	events   repository.EventRepository
	tenants  repository.TenantRepository
	comm     repository.CommunicationRepository
	mailer   email.Service
	opts     Options

	cron *cron.Cron
}

func NewDispatcher(
	jobs repository.JobRepository,
	bookings repository.BookingRepository,
	events repository.EventRepository,
	tenants repository.TenantRepository,
	comm repository.CommunicationRepository,
	mailer email.Service,
	opts Options,
) *Dispatcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	return &Dispatcher{
		jobs:     jobs,
		bookings: bookings,
		events:   events,
		tenants:  tenants,
		comm:     comm,
		mailer:   mailer,
		opts:     opts,
	}
}

// Start launches the poll loop. It returns once the loop is scheduled.
func (d *Dispatcher) Start() error {
	d.cron = cron.New()
	spec := fmt.Sprintf("@every %s", d.opts.PollInterval)
	if _, err := d.cron.AddFunc(spec, func() {
		d.Poll(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule dispatch loop: %w", err)
	}
	d.cron.Start()
	log.Printf("[Worker] dispatch loop started, interval=%s batch=%d", d.opts.PollInterval, d.opts.BatchSize)
	return nil
}

// Stop halts the poll loop and waits for any in-flight pass to finish.
func (d *Dispatcher) Stop() {
	if d.cron == nil {
		return
	}
	<-d.cron.Stop().Done()
	log.Printf("[Worker] dispatch loop stopped")
}

// Poll runs a single claim-and-dispatch pass.
func (d *Dispatcher) Poll(ctx context.Context) {
	jobs, err := d.jobs.ClaimPending(ctx, d.opts.BatchSize)
	if err != nil {
		log.Printf("[Worker] claim failed: %v", err)
		return
	}

	for i := range jobs {
		job := &jobs[i]
		if err := d.process(ctx, job); err != nil {
			msg := err.Error()
			log.Printf("[Worker] job %s (%s) failed: %s", job.ID, job.Type, msg)
			if upErr := d.jobs.UpdateStatus(ctx, job.ID, models.JobFailed, &msg); upErr != nil {
				log.Printf("[Worker] failed to mark job %s failed: %v", job.ID, upErr)
			}
			continue
		}
		if upErr := d.jobs.UpdateStatus(ctx, job.ID, models.JobCompleted, nil); upErr != nil {
			log.Printf("[Worker] failed to mark job %s completed: %v", job.ID, upErr)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, job *models.Job) error {
	booking, err := d.bookings.FindByID(ctx, job.TenantID, job.TargetID)
	if err != nil {
		return fmt.Errorf("booking %s not found: %w", job.TargetID, err)
	}
	event, err := d.events.FindByID(ctx, job.TenantID, booking.EventID)
	if err != nil {
		return fmt.Errorf("event %s not found: %w", booking.EventID, err)
	}
	tenant, err := d.tenants.FindByID(ctx, job.TenantID)
	if err != nil {
		return fmt.Errorf("tenant %s not found: %w", job.TenantID, err)
	}

	trigger := ResolveTrigger(job, booking)
	if trigger == "" {
		return fmt.Errorf("unknown job type %q", job.Type)
	}

	rules, err := d.comm.ListRulesByTrigger(ctx, job.TenantID, &event.ID, trigger)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		log.Printf("[Worker] no rule for event %s trigger %s, skipping", event.ID, trigger)
		return nil
	}

	tmpl, err := d.comm.GetTemplate(ctx, rules[0].TemplateID)
	if err != nil {
		return fmt.Errorf("template %s not found: %w", rules[0].TemplateID, err)
	}

	tctx := BuildContext(d.opts.FrontendURL, tenant, event, booking)
	hash := ContextHash(tmpl.Name, tctx)

	sent, err := d.comm.HasMailBeenSent(ctx, booking.CustomerEmail, tmpl.Name, hash)
	if err != nil {
		return err
	}
	if sent {
		log.Printf("[Worker] duplicate content for job %s, delivery skipped", job.ID)
		return d.comm.AppendMailLog(ctx, models.NewMailLog(
			job.ID, booking.CustomerEmail, tmpl.Name, hash, models.MailSkippedDuplicate))
	}

	subject, body, err := Render(tmpl, tctx)
	if err != nil {
		return err
	}

	var attachmentName string
	var attachment []byte
	if job.Type == models.JobConfirmation {
		attachmentName = "invite.ics"
		attachment = ics.Invite(event, booking)
	}

	if err := d.mailer.Send(ctx, booking.CustomerEmail, subject, body, attachmentName, attachment); err != nil {
		return err
	}

	return d.comm.AppendMailLog(ctx, models.NewMailLog(
		job.ID, booking.CustomerEmail, tmpl.Name, hash, models.MailSent))
}
