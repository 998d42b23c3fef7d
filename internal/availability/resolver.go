package availability

import (
	"strconv"
	"strings"
	"time"

	"github.com/THF151/booking-backend/internal/models"
)

// EffectiveWindow is one bookable window after override resolution,
// expressed as minute-of-day offsets with the capacity that applies to
// slots generated from it.
type EffectiveWindow struct {
	StartMin int
	EndMin   int
	Capacity int
}

// DaySchedule is the resolved schedule for a single local date.
type DaySchedule struct {
	Unavailable bool
	Windows     []EffectiveWindow
	Location    *string
	HostName    *string
}

// ResolveDay merges an event's weekly config with the date's override.
// Precedence: an unavailable override wins outright; replacement windows
// beat the weekly config; window capacity beats the override's day
// capacity, which beats the event capacity. Location and host resolve to
// the override's values when present; they are display-only.
func ResolveDay(event *models.Event, date time.Time, override *models.EventOverride) DaySchedule {
	var sched DaySchedule

	if override != nil {
		sched.Location = override.Location
		sched.HostName = override.HostName
		if override.IsUnavailable {
			sched.Unavailable = true
			return sched
		}
	}

	cfg := event.WeeklyConfig()
	if override != nil {
		if replacement, ok := override.ReplacementConfig(); ok {
			cfg = replacement
		}
	}

	dayCapacity := event.MaxParticipants
	if override != nil && override.MaxParticipants != nil {
		dayCapacity = *override.MaxParticipants
	}

	for _, w := range cfg.ForWeekday(date.Weekday()) {
		startMin, ok := parseClock(w.Start)
		if !ok {
			continue
		}
		endMin, ok := parseClock(w.End)
		if !ok || endMin <= startMin {
			continue
		}
		// "23:59" means end of day
		if endMin == minutesPerDay-1 {
			endMin = minutesPerDay
		}

		capacity := dayCapacity
		if w.MaxParticipants != nil {
			capacity = *w.MaxParticipants
		}

		sched.Windows = append(sched.Windows, EffectiveWindow{
			StartMin: startMin,
			EndMin:   endMin,
			Capacity: capacity,
		})
	}

	return sched
}

// parseClock parses "HH:MM" into a minute-of-day offset.
func parseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
