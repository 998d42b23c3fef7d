package availability

import (
	"time"

	"github.com/THF151/booking-backend/internal/models"
)

const minutesPerDay = 1440

// DayOccupancy holds per-minute occupancy counts across one local day.
// Indexes are minute offsets from the day's start instant, so on DST
// transition days bookings and candidates are compared on the same axis.
// Counts are integers, not booleans: capacity may exceed one.
type DayOccupancy struct {
	counts []int

	// EarliestStart is the start of the day's earliest booking, used as
	// the pivot between the first-notice and general-notice cutoffs.
	EarliestStart *time.Time
}

// TrackOccupancy folds the day's bookings into minute counts. The count
// span covers the whole [dayStart, dayEnd) range, which runs to 1500
// minutes on a fall-back day. Bookings are clipped to the range;
// cancelled bookings must be filtered out by the caller's query.
func TrackOccupancy(bookings []models.Booking, dayStart, dayEnd time.Time) *DayOccupancy {
	span := int(dayEnd.Sub(dayStart) / time.Minute)
	if span < 0 {
		span = 0
	}
	occ := &DayOccupancy{counts: make([]int, span)}

	for i := range bookings {
		b := &bookings[i]

		start := b.StartTime
		if start.Before(dayStart) {
			start = dayStart
		}
		end := b.EndTime
		if end.After(dayEnd) {
			end = dayEnd
		}
		if !start.Before(end) {
			continue
		}

		if occ.EarliestStart == nil || b.StartTime.Before(*occ.EarliestStart) {
			t := b.StartTime
			occ.EarliestStart = &t
		}

		startIdx := occ.clampMinute(int(start.Sub(dayStart) / time.Minute))
		endIdx := occ.clampMinute(int(end.Sub(dayStart) / time.Minute))
		for m := startIdx; m < endIdx; m++ {
			occ.counts[m]++
		}
	}

	return occ
}

// HasCapacity reports whether every minute of [startIdx, startIdx+duration)
// is strictly below capacity. Minutes outside the day are ignored.
func (o *DayOccupancy) HasCapacity(startIdx, duration, capacity int) bool {
	for m := startIdx; m < startIdx+duration; m++ {
		if m < 0 || m >= len(o.counts) {
			continue
		}
		if o.counts[m] >= capacity {
			return false
		}
	}
	return true
}

// Count returns the occupancy of a single minute offset.
func (o *DayOccupancy) Count(idx int) int {
	if idx < 0 || idx >= len(o.counts) {
		return 0
	}
	return o.counts[idx]
}

func (o *DayOccupancy) clampMinute(m int) int {
	if m < 0 {
		return 0
	}
	if m > len(o.counts) {
		return len(o.counts)
	}
	return m
}
