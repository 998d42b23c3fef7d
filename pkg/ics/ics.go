// Package ics renders iCalendar invites attached to confirmation emails.
package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/THF151/booking-backend/internal/models"
)

// Invite serializes a booking as a single-event iCalendar request.
func Invite(event *models.Event, booking *models.Booking) []byte {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodRequest)

	ev := cal.AddEvent(booking.ID)
	ev.SetDtStampTime(time.Now().UTC())
	ev.SetStartAt(booking.StartTime)
	ev.SetEndAt(booking.EndTime)
	ev.SetSummary(event.Title)
	ev.SetDescription(event.Desc)

	location := event.Location
	if booking.Location != nil {
		location = *booking.Location
	}
	ev.SetLocation(location)

	return []byte(cal.Serialize())
}
