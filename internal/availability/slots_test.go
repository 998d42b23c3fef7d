package availability

import (
	"testing"
	"time"

	"github.com/THF151/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recurringEvent(t *testing.T, cfg models.WeekdayConfig) *models.Event {
	t.Helper()
	return &models.Event{
		Timezone:        "UTC",
		ScheduleType:    models.ScheduleRecurring,
		Config:          mustConfig(t, cfg),
		DurationMin:     60,
		IntervalMin:     60,
		MaxParticipants: 1,
		ActiveStart:     time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC),
		ActiveEnd:       time.Date(2031, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func mondayMorning(t *testing.T) *models.Event {
	t.Helper()
	return recurringEvent(t, models.WeekdayConfig{
		Monday: []models.TimeWindow{{Start: "09:00", End: "12:00"}},
	})
}

func utc(hour, minute int) time.Time {
	return time.Date(2030, time.June, 3, hour, minute, 0, 0, time.UTC)
}

var dayBefore = time.Date(2030, time.June, 2, 0, 0, 0, 0, time.UTC)

func TestCalculateSlots_BasicWindow(t *testing.T) {
	slots := CalculateSlots(mondayMorning(t), monday, dayBefore, nil, nil, nil)
	assert.Equal(t, []time.Time{utc(9, 0), utc(10, 0), utc(11, 0)}, slots)
}

func TestCalculateSlots_BookingRemovesOverlappingSlots(t *testing.T) {
	bookings := []models.Booking{booking(utc(9, 30), utc(10, 30))}
	slots := CalculateSlots(mondayMorning(t), monday, dayBefore, bookings, nil, nil)
	// 09:00 and 10:00 both overlap the booking; only 11:00 survives.
	assert.Equal(t, []time.Time{utc(11, 0)}, slots)
}

func TestCalculateSlots_CapacityOverrideRestoresSlot(t *testing.T) {
	bookings := []models.Booking{booking(utc(9, 0), utc(10, 0))}

	slots := CalculateSlots(mondayMorning(t), monday, dayBefore, bookings, nil, nil)
	assert.NotContains(t, slots, utc(9, 0))

	override := &models.EventOverride{MaxParticipants: intPtr(3)}
	slots = CalculateSlots(mondayMorning(t), monday, dayBefore, bookings, override, nil)
	assert.Contains(t, slots, utc(9, 0))
}

func TestCalculateSlots_UnavailableOverride(t *testing.T) {
	override := &models.EventOverride{IsUnavailable: true}
	slots := CalculateSlots(mondayMorning(t), monday, dayBefore, nil, override, nil)
	assert.Empty(t, slots)
}

func TestCalculateSlots_IntervalSmallerThanDuration(t *testing.T) {
	event := mondayMorning(t)
	event.IntervalMin = 30

	slots := CalculateSlots(event, monday, dayBefore, nil, nil, nil)
	assert.Equal(t, []time.Time{
		utc(9, 0), utc(9, 30), utc(10, 0), utc(10, 30), utc(11, 0),
	}, slots)
}

func TestCalculateSlots_NoticeCutoffs(t *testing.T) {
	event := mondayMorning(t)
	event.MinNoticeGeneral = 120      // 2h
	event.MinNoticeFirst = 12 * 60    // 12h
	now := utc(0, 0)

	// First booking of the day: the 12h notice pushes past the window.
	slots := CalculateSlots(event, monday, now, nil, nil, nil)
	assert.Empty(t, slots)

	// An existing booking pivots candidates at or after it to the
	// general notice; candidates before it still need the first notice.
	bookings := []models.Booking{booking(utc(10, 0), utc(11, 0))}
	slots = CalculateSlots(event, monday, now, bookings, nil, nil)
	assert.Equal(t, []time.Time{utc(11, 0)}, slots)
}

func TestCalculateSlots_CutoffIsExclusive(t *testing.T) {
	event := mondayMorning(t)
	event.MinNoticeGeneral = 60
	event.MinNoticeFirst = 60

	// Cutoff lands exactly on 09:00; a slot must start strictly after it.
	slots := CalculateSlots(event, monday, utc(8, 0), nil, nil, nil)
	assert.Equal(t, []time.Time{utc(10, 0), utc(11, 0)}, slots)
}

func TestCalculateSlots_ActiveWindowBounds(t *testing.T) {
	event := mondayMorning(t)
	event.ActiveStart = utc(10, 0)
	slots := CalculateSlots(event, monday, dayBefore, nil, nil, nil)
	assert.Equal(t, []time.Time{utc(10, 0), utc(11, 0)}, slots)

	event = mondayMorning(t)
	event.ActiveEnd = utc(11, 0) // a 10:00 slot would end exactly at 11:00
	slots = CalculateSlots(event, monday, dayBefore, nil, nil, nil)
	assert.Equal(t, []time.Time{utc(9, 0), utc(10, 0)}, slots)
}

func TestCalculateSlots_ReplacementWindows(t *testing.T) {
	override := &models.EventOverride{
		Config: mustConfig(t, models.WeekdayConfig{
			Monday: []models.TimeWindow{{Start: "14:00", End: "16:00"}},
		}),
	}
	slots := CalculateSlots(mondayMorning(t), monday, dayBefore, nil, override, nil)
	assert.Equal(t, []time.Time{utc(14, 0), utc(15, 0)}, slots)
}

func TestCalculateSlots_LocalTimezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	event := mondayMorning(t)
	event.Timezone = "Europe/Berlin"

	slots := CalculateSlots(event, monday, dayBefore, nil, nil, nil)
	require.Len(t, slots, 3)
	// 09:00 CEST is 07:00 UTC.
	assert.Equal(t, utc(7, 0), slots[0])
	assert.Equal(t, 9, slots[0].In(berlin).Hour())
}

func TestCalculateSlots_DSTGapSkipped(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Berlin springs forward on 2030-03-31: 02:00 local does not exist.
	springForward := time.Date(2030, time.March, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, springForward.Weekday())

	event := recurringEvent(t, models.WeekdayConfig{
		Sunday: []models.TimeWindow{{Start: "01:00", End: "05:00"}},
	})
	event.Timezone = "Europe/Berlin"
	event.DurationMin = 30
	event.IntervalMin = 30

	now := time.Date(2030, time.March, 30, 0, 0, 0, 0, time.UTC)
	slots := CalculateSlots(event, springForward, now, nil, nil, nil)

	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.NotEqual(t, 2, s.In(berlin).Hour(), "slot %s falls in the DST gap", s)
	}
	// 01:30 CET and 03:00 CEST exist on either side of the gap.
	assert.Contains(t, slots, time.Date(2030, time.March, 31, 0, 30, 0, 0, time.UTC))
	assert.Contains(t, slots, time.Date(2030, time.March, 31, 1, 0, 0, 0, time.UTC))
}

func TestCalculateSlots_BookingAcrossDSTDayCounted(t *testing.T) {
	// On the spring-forward day the minute axis is the offset from the
	// day's UTC start, so a booking still blocks the matching candidate.
	event := recurringEvent(t, models.WeekdayConfig{
		Sunday: []models.TimeWindow{{Start: "01:00", End: "05:00"}},
	})
	event.Timezone = "Europe/Berlin"
	event.DurationMin = 30
	event.IntervalMin = 30

	springForward := time.Date(2030, time.March, 31, 0, 0, 0, 0, time.UTC)
	now := time.Date(2030, time.March, 30, 0, 0, 0, 0, time.UTC)

	// 03:00 CEST = 01:00 UTC
	taken := time.Date(2030, time.March, 31, 1, 0, 0, 0, time.UTC)
	bookings := []models.Booking{booking(taken, taken.Add(30*time.Minute))}

	slots := CalculateSlots(event, springForward, now, bookings, nil, nil)
	assert.NotContains(t, slots, taken)
	assert.Contains(t, slots, taken.Add(30*time.Minute))
}

func TestCalculateSlots_DSTFallBackAmbiguousSkipped(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Berlin falls back on 2030-10-27: 02:00-02:59 local occurs twice.
	fallBack := time.Date(2030, time.October, 27, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, fallBack.Weekday())

	event := recurringEvent(t, models.WeekdayConfig{
		Sunday: []models.TimeWindow{{Start: "01:00", End: "05:00"}},
	})
	event.Timezone = "Europe/Berlin"
	event.DurationMin = 30
	event.IntervalMin = 30

	now := time.Date(2030, time.October, 26, 0, 0, 0, 0, time.UTC)
	slots := CalculateSlots(event, fallBack, now, nil, nil, nil)

	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.NotEqual(t, 2, s.In(berlin).Hour(), "slot %s reads an ambiguous wall clock", s)
	}
	// 01:30 CEST before the transition and 03:00 CET after it are unique.
	assert.Contains(t, slots, time.Date(2030, time.October, 26, 23, 30, 0, 0, time.UTC))
	assert.Contains(t, slots, time.Date(2030, time.October, 27, 2, 0, 0, 0, time.UTC))
}

func TestCalculateSlots_FallBackLateSlotBlocked(t *testing.T) {
	// The fall-back day is 25 hours long; a booking past minute 1440 of
	// the day must still count against its candidate.
	event := recurringEvent(t, models.WeekdayConfig{
		Sunday: []models.TimeWindow{{Start: "22:00", End: "23:59"}},
	})
	event.Timezone = "Europe/Berlin"

	fallBack := time.Date(2030, time.October, 27, 0, 0, 0, 0, time.UTC)
	now := time.Date(2030, time.October, 26, 0, 0, 0, 0, time.UTC)

	// 23:00 local CET is 22:00 UTC, 24 hours after the day start.
	taken := time.Date(2030, time.October, 27, 22, 0, 0, 0, time.UTC)

	slots := CalculateSlots(event, fallBack, now, nil, nil, nil)
	assert.Contains(t, slots, taken)

	bookings := []models.Booking{booking(taken, taken.Add(time.Hour))}
	slots = CalculateSlots(event, fallBack, now, bookings, nil, nil)
	assert.NotContains(t, slots, taken)
	// 22:00 local is untouched.
	assert.Contains(t, slots, time.Date(2030, time.October, 27, 21, 0, 0, 0, time.UTC))
}

func TestCalculateSlots_ManualSessions(t *testing.T) {
	event := &models.Event{
		Timezone:     "UTC",
		ScheduleType: models.ScheduleManual,
		// Weekly config must be ignored for manual events.
		Config: mustConfig(t, models.WeekdayConfig{
			Monday: []models.TimeWindow{{Start: "09:00", End: "12:00"}},
		}),
	}

	sessions := []models.EventSession{
		{StartTime: utc(14, 0), EndTime: utc(15, 0), MaxParticipants: 1},
		{StartTime: utc(16, 0), EndTime: utc(17, 30), MaxParticipants: 2},
		// Session on another date must not surface.
		{StartTime: utc(14, 0).AddDate(0, 0, 1), EndTime: utc(15, 0).AddDate(0, 0, 1), MaxParticipants: 1},
	}

	slots := CalculateSlots(event, monday, dayBefore, nil, nil, sessions)
	assert.Equal(t, []time.Time{utc(14, 0), utc(16, 0)}, slots)
}

func TestCalculateSlots_ManualSessionCapacity(t *testing.T) {
	event := &models.Event{Timezone: "UTC", ScheduleType: models.ScheduleManual}
	sessions := []models.EventSession{
		{StartTime: utc(14, 0), EndTime: utc(15, 0), MaxParticipants: 2},
	}

	one := []models.Booking{booking(utc(14, 0), utc(15, 0))}
	slots := CalculateSlots(event, monday, dayBefore, one, nil, sessions)
	assert.Equal(t, []time.Time{utc(14, 0)}, slots)

	two := append(one, booking(utc(14, 0), utc(15, 0)))
	slots = CalculateSlots(event, monday, dayBefore, two, nil, sessions)
	assert.Empty(t, slots)
}

func TestCalculateSlots_DegenerateEvent(t *testing.T) {
	event := mondayMorning(t)
	event.DurationMin = 0
	assert.Empty(t, CalculateSlots(event, monday, dayBefore, nil, nil, nil))

	event = mondayMorning(t)
	event.IntervalMin = 0
	assert.Empty(t, CalculateSlots(event, monday, dayBefore, nil, nil, nil))
}

func TestDayBounds(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	start, end := DayBounds(monday, time.UTC)
	assert.Equal(t, utc(0, 0), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	// The spring-forward day is 23 hours long.
	springForward := time.Date(2030, time.March, 31, 0, 0, 0, 0, time.UTC)
	start, end = DayBounds(springForward, berlin)
	assert.Equal(t, time.Date(2030, time.March, 30, 23, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 23*time.Hour, end.Sub(start))
}

func TestResolveLocalTime(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	springForward := time.Date(2030, time.March, 31, 0, 0, 0, 0, time.UTC)

	_, ok := ResolveLocalTime(springForward, 2, 30, berlin)
	assert.False(t, ok, "02:30 does not exist on the spring-forward day")

	got, ok := ResolveLocalTime(springForward, 3, 0, berlin)
	require.True(t, ok)
	assert.Equal(t, time.Date(2030, time.March, 31, 1, 0, 0, 0, time.UTC), got.UTC())

	got, ok = ResolveLocalTime(monday, 9, 0, time.UTC)
	require.True(t, ok)
	assert.Equal(t, utc(9, 0), got)
}

func TestResolveLocalTime_FallBackAmbiguity(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 2030-10-27: 03:00 CEST falls back to 02:00 CET.
	fallBack := time.Date(2030, time.October, 27, 0, 0, 0, 0, time.UTC)

	_, ok := ResolveLocalTime(fallBack, 2, 30, berlin)
	assert.False(t, ok, "02:30 occurs twice on the fall-back day")
	_, ok = ResolveLocalTime(fallBack, 2, 0, berlin)
	assert.False(t, ok, "02:00 occurs twice on the fall-back day")

	// Readings on either side of the repeated hour stay unique.
	got, ok := ResolveLocalTime(fallBack, 1, 30, berlin)
	require.True(t, ok)
	assert.Equal(t, time.Date(2030, time.October, 26, 23, 30, 0, 0, time.UTC), got.UTC())

	got, ok = ResolveLocalTime(fallBack, 3, 0, berlin)
	require.True(t, ok)
	assert.Equal(t, time.Date(2030, time.October, 27, 2, 0, 0, 0, time.UTC), got.UTC())

	// Midnight neighbors an earlier calendar day, not a repeated clock.
	_, ok = ResolveLocalTime(fallBack, 0, 0, berlin)
	assert.True(t, ok)
}
