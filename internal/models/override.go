package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EventOverride is a per-date exception to a recurring event's weekly
// schedule. Date is the local calendar day in the event's timezone,
// stored as "2006-01-02". Overrides are ignored for manual events.
type EventOverride struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	EventID string `gorm:"type:uuid;not null;uniqueIndex:idx_overrides_event_date,priority:1" json:"event_id"`
	Date    string `gorm:"type:date;not null;uniqueIndex:idx_overrides_event_date,priority:2" json:"date"`

	IsUnavailable bool `gorm:"not null;default:false" json:"is_unavailable"`

	// Config, when present, replaces the event's weekly windows for this
	// date. MaxParticipants, when present, replaces the event capacity.
	Config          datatypes.JSON `gorm:"type:jsonb" json:"config,omitempty"`
	MaxParticipants *int           `json:"max_participants,omitempty"`

	Location *string `json:"location,omitempty"`
	HostName *string `json:"host_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func NewEventOverride(eventID, date string) *EventOverride {
	return &EventOverride{
		ID:      uuid.NewString(),
		EventID: eventID,
		Date:    date,
	}
}

// ReplacementConfig decodes the replacement windows. The second return
// is false when the override carries no replacement config.
func (o *EventOverride) ReplacementConfig() (WeekdayConfig, bool) {
	if len(o.Config) == 0 {
		return WeekdayConfig{}, false
	}
	var cfg WeekdayConfig
	if err := json.Unmarshal(o.Config, &cfg); err != nil {
		return WeekdayConfig{}, false
	}
	return cfg, true
}
