package worker

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	texttemplate "text/template"
	"time"

	"github.com/THF151/booking-backend/internal/models"
)

// ResolveTrigger maps a claimed job back to the notification trigger it
// serves. Reminder jobs are classified by their gap to the booking start
// rather than by a rule id stored at scheduling time, so rules edited in
// between still apply: a gap of 23 hours or more reads as the 24-hour
// reminder, anything shorter as the 1-hour reminder.
func ResolveTrigger(job *models.Job, booking *models.Booking) string {
	switch job.Type {
	case models.JobConfirmation:
		return models.TriggerOnBooking
	case models.JobCancellation:
		return models.TriggerOnCancel
	case models.JobReschedule:
		return models.TriggerOnReschedule
	case models.JobReminder:
		if booking.StartTime.Sub(job.ExecuteAt) >= 23*time.Hour {
			return models.TriggerReminder24H
		}
		return models.TriggerReminder1H
	}
	return ""
}

// BuildContext assembles the template variables for one notification.
func BuildContext(frontendURL string, tenant *models.Tenant, event *models.Event, booking *models.Booking) map[string]any {
	location := event.Location
	if booking.Location != nil {
		location = *booking.Location
	}

	logoURL := ""
	if tenant.LogoURL != nil {
		logoURL = *tenant.LogoURL
	}

	localStart := booking.StartTime.In(event.Loc())

	return map[string]any{
		"user_name":         booking.CustomerName,
		"event_title":       event.Title,
		"event_description": event.Desc,
		"tenant_name":       tenant.Name,
		"logo_url":          logoURL,
		"start_time":        localStart.Format("2006-01-02 15:04"),
		"timezone":          event.Timezone,
		"location":          location,
		"duration":          strconv.Itoa(event.DurationMin),
		"manage_link":       frontendURL + "/manage/" + booking.ManagementToken,
		"book_link":         frontendURL + "/book/" + booking.TenantID + "/" + event.Slug,
	}
}

// ContextHash is the idempotency key over the rendered content: same
// template and same variables hash identically, so a duplicate job can
// never produce a second delivery.
func ContextHash(templateKey string, context map[string]any) string {
	// json.Marshal sorts map keys, making the encoding stable
	encoded, _ := json.Marshal(context)
	sum := sha256.Sum256(append([]byte(templateKey), encoded...))
	return hex.EncodeToString(sum[:])
}

// Render produces the final subject and HTML body from the template pair.
func Render(tmpl *models.EmailTemplate, context map[string]any) (subject, body string, err error) {
	st, err := texttemplate.New(tmpl.Name + "_subject").Parse(tmpl.SubjectTemplate)
	if err != nil {
		return "", "", fmt.Errorf("parse subject template %s: %w", tmpl.Name, err)
	}
	var sb bytes.Buffer
	if err := st.Execute(&sb, context); err != nil {
		return "", "", fmt.Errorf("render subject template %s: %w", tmpl.Name, err)
	}

	bt, err := htmltemplate.New(tmpl.Name).Parse(tmpl.BodyTemplate)
	if err != nil {
		return "", "", fmt.Errorf("parse body template %s: %w", tmpl.Name, err)
	}
	var bb bytes.Buffer
	if err := bt.Execute(&bb, context); err != nil {
		return "", "", fmt.Errorf("render body template %s: %w", tmpl.Name, err)
	}

	return sb.String(), bb.String(), nil
}
