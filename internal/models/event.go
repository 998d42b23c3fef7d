package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type ScheduleType string

const (
	ScheduleRecurring ScheduleType = "recurring"
	ScheduleManual    ScheduleType = "manual"
)

type AccessMode string

const (
	AccessOpen       AccessMode = "open"
	AccessRestricted AccessMode = "restricted"
	AccessClosed     AccessMode = "closed"
)

// TimeWindow is one bookable window inside a weekday, local clock times
// in "HH:MM" form. MaxParticipants, when set, beats the day-level and
// event-level capacity for slots inside this window.
type TimeWindow struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	MaxParticipants *int   `json:"max_participants,omitempty"`
}

// WeekdayConfig holds the weekly recurrence pattern. A nil slice for a
// weekday means the event is not bookable on that weekday.
type WeekdayConfig struct {
	Monday    []TimeWindow `json:"monday,omitempty"`
	Tuesday   []TimeWindow `json:"tuesday,omitempty"`
	Wednesday []TimeWindow `json:"wednesday,omitempty"`
	Thursday  []TimeWindow `json:"thursday,omitempty"`
	Friday    []TimeWindow `json:"friday,omitempty"`
	Saturday  []TimeWindow `json:"saturday,omitempty"`
	Sunday    []TimeWindow `json:"sunday,omitempty"`
}

// ForWeekday returns the windows configured for the given weekday.
func (c WeekdayConfig) ForWeekday(d time.Weekday) []TimeWindow {
	switch d {
	case time.Monday:
		return c.Monday
	case time.Tuesday:
		return c.Tuesday
	case time.Wednesday:
		return c.Wednesday
	case time.Thursday:
		return c.Thursday
	case time.Friday:
		return c.Friday
	case time.Saturday:
		return c.Saturday
	}
	return c.Sunday
}

type Event struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string `gorm:"not null;index" json:"tenant_id"`
	Slug      string `gorm:"not null;uniqueIndex:idx_events_tenant_slug,priority:2" json:"slug"`
	Title     string `gorm:"not null" json:"title"`
	Desc      string `json:"description"`
	Location  string `json:"location"`
	HostName  string `json:"host_name"`
	Timezone  string `gorm:"not null;default:'UTC'" json:"timezone"`
	ImageURL  string `json:"image_url"`

	ScheduleType ScheduleType   `gorm:"type:varchar(20);not null;default:'recurring'" json:"schedule_type"`
	Config       datatypes.JSON `gorm:"type:jsonb" json:"config"`

	DurationMin     int `gorm:"not null" json:"duration_min"`
	IntervalMin     int `gorm:"not null" json:"interval_min"`
	MaxParticipants int `gorm:"not null;default:1" json:"max_participants"`

	// Minimum lead time in minutes. The "first" notice applies until the
	// day has its first booking, the "general" notice afterwards.
	MinNoticeGeneral int `gorm:"not null;default:0" json:"min_notice_general"`
	MinNoticeFirst   int `gorm:"not null;default:0" json:"min_notice_first"`

	ActiveStart time.Time `gorm:"not null" json:"active_start"`
	ActiveEnd   time.Time `gorm:"not null" json:"active_end"`

	AccessMode              AccessMode `gorm:"type:varchar(20);not null;default:'open'" json:"access_mode"`
	AllowCustomerCancel     bool       `gorm:"not null;default:true" json:"allow_customer_cancel"`
	AllowCustomerReschedule bool       `gorm:"not null;default:true" json:"allow_customer_reschedule"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WeeklyConfig decodes the stored weekly pattern. An empty or invalid
// column yields the zero config (no bookable weekdays).
func (e *Event) WeeklyConfig() WeekdayConfig {
	var cfg WeekdayConfig
	if len(e.Config) == 0 {
		return cfg
	}
	if err := json.Unmarshal(e.Config, &cfg); err != nil {
		return WeekdayConfig{}
	}
	return cfg
}

// Loc resolves the event's IANA timezone, falling back to UTC.
func (e *Event) Loc() *time.Location {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
