// Package availability computes the bookable slots of an event for a
// single local date. The computation is pure: all inputs, including the
// current time, are parameters, and no storage is touched.
package availability

import (
	"sort"
	"time"

	"github.com/THF151/booking-backend/internal/models"
)

// CalculateSlots returns the sorted, deduplicated UTC start instants that
// are bookable on the given local date. Only the calendar components of
// date are read; its location is ignored.
//
// Manual events derive slots solely from their sessions; recurring events
// walk the resolved windows in interval steps, skipping candidates that
// fall into a DST gap or an ambiguous fall-back repeat, start before the
// applicable notice cutoff, leave
// the event's active window, or would push any minute of their duration
// to the effective capacity.
func CalculateSlots(
	event *models.Event,
	date time.Time,
	now time.Time,
	bookings []models.Booking,
	override *models.EventOverride,
	sessions []models.EventSession,
) []time.Time {
	loc := event.Loc()

	if event.ScheduleType == models.ScheduleManual {
		return manualSlots(date, loc, sessions, bookings)
	}

	sched := ResolveDay(event, date, override)
	if sched.Unavailable || len(sched.Windows) == 0 {
		return nil
	}
	if event.DurationMin <= 0 || event.IntervalMin <= 0 {
		return nil
	}

	dayStart, dayEnd := DayBounds(date, loc)
	occ := TrackOccupancy(bookings, dayStart, dayEnd)

	cutoffGeneral := now.Add(time.Duration(event.MinNoticeGeneral) * time.Minute)
	cutoffFirst := now.Add(time.Duration(event.MinNoticeFirst) * time.Minute)

	var slots []time.Time
	year, month, day := date.Date()

	for _, w := range sched.Windows {
		for cursor := w.StartMin; cursor+event.DurationMin <= w.EndMin; cursor += event.IntervalMin {
			local, ok := resolveLocal(year, month, day, cursor, loc)
			if !ok {
				continue // DST gap or ambiguous fall-back reading
			}
			slotStart := local.UTC()
			slotEnd := slotStart.Add(time.Duration(event.DurationMin) * time.Minute)

			cutoff := cutoffFirst
			if occ.EarliestStart != nil && !slotStart.Before(*occ.EarliestStart) {
				cutoff = cutoffGeneral
			}
			if !slotStart.After(cutoff) {
				continue
			}
			if slotStart.Before(event.ActiveStart) || slotEnd.After(event.ActiveEnd) {
				continue
			}

			idx := int(slotStart.Sub(dayStart) / time.Minute)
			if !occ.HasCapacity(idx, event.DurationMin, w.Capacity) {
				continue
			}

			slots = append(slots, slotStart)
		}
	}

	return sortDedup(slots)
}

func manualSlots(date time.Time, loc *time.Location, sessions []models.EventSession, bookings []models.Booking) []time.Time {
	year, month, day := date.Date()

	var slots []time.Time
	for i := range sessions {
		s := &sessions[i]

		sy, sm, sd := s.StartTime.In(loc).Date()
		if sy != year || sm != month || sd != day {
			continue
		}

		overlapping := 0
		for j := range bookings {
			b := &bookings[j]
			if b.StartTime.Before(s.EndTime) && b.EndTime.After(s.StartTime) {
				overlapping++
			}
		}
		if overlapping < s.MaxParticipants {
			slots = append(slots, s.StartTime.UTC())
		}
	}

	return sortDedup(slots)
}

// DayBounds returns the UTC instants bounding the local calendar day
// [midnight, next midnight) in loc.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	year, month, day := date.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	end := time.Date(year, month, day+1, 0, 0, 0, 0, loc)
	return start.UTC(), end.UTC()
}

// ResolveLocalTime converts a wall-clock reading on the given date to an
// instant. The second return is false when the reading does not map to
// exactly one instant: it falls into a DST spring-forward gap, or a
// fall-back transition repeats it and the reading is ambiguous.
func ResolveLocalTime(date time.Time, hour, minute int, loc *time.Location) (time.Time, bool) {
	year, month, day := date.Date()
	return resolveLocal(year, month, day, hour*60+minute, loc)
}

func resolveLocal(year int, month time.Month, day, minuteOfDay int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, month, day, minuteOfDay/60, minuteOfDay%60, 0, 0, loc)
	// time.Date normalizes nonexistent readings forward; a changed wall
	// clock after the round trip means the reading fell into a gap.
	if !sameWallClock(t, day, minuteOfDay) {
		return time.Time{}, false
	}
	// A fall-back transition repeats its wall clocks. DST shifts are 30
	// or 60 minutes, so probing those neighbors finds the twin instant.
	for _, shift := range []time.Duration{-time.Hour, -30 * time.Minute, 30 * time.Minute, time.Hour} {
		if sameWallClock(t.Add(shift), day, minuteOfDay) {
			return time.Time{}, false
		}
	}
	return t, true
}

func sameWallClock(t time.Time, day, minuteOfDay int) bool {
	return t.Day() == day && t.Hour()*60+t.Minute() == minuteOfDay
}

func sortDedup(slots []time.Time) []time.Time {
	if len(slots) == 0 {
		return nil
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	out := slots[:1]
	for _, s := range slots[1:] {
		if !s.Equal(out[len(out)-1]) {
			out = append(out, s)
		}
	}
	return out
}
