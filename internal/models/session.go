package models

import (
	"time"

	"github.com/google/uuid"
)

// EventSession is an explicitly created bookable interval. It is the only
// source of availability for manual events; weekly config and overrides
// do not apply to it.
type EventSession struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	EventID string `gorm:"type:uuid;not null;index" json:"event_id"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	MaxParticipants int     `gorm:"not null;default:1" json:"max_participants"`
	Location        *string `json:"location,omitempty"`
	HostName        *string `json:"host_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func NewEventSession(eventID string, start, end time.Time, maxParticipants int) *EventSession {
	return &EventSession{
		ID:              uuid.NewString(),
		EventID:         eventID,
		StartTime:       start,
		EndTime:         end,
		MaxParticipants: maxParticipants,
	}
}
