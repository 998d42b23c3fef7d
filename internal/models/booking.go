package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID        string  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string  `gorm:"not null;index" json:"tenant_id"`
	EventID   string  `gorm:"type:uuid;not null;index" json:"event_id"`
	InviteeID *string `gorm:"type:uuid" json:"invitee_id,omitempty"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	CustomerName  string  `gorm:"not null" json:"customer_name"`
	CustomerEmail string  `gorm:"not null" json:"customer_email"`
	CustomerNote  *string `json:"customer_note,omitempty"`
	Location      *string `json:"location,omitempty"`
	LabelID       *string `json:"label_id,omitempty"`

	Status BookingStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`

	// ManagementToken lets the customer cancel or reschedule without an
	// account; it is part of the creation response.
	ManagementToken string `gorm:"not null;uniqueIndex" json:"management_token"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewBookingParams struct {
	TenantID  string
	EventID   string
	Start     time.Time
	End       time.Time
	Name      string
	Email     string
	Note      *string
	InviteeID *string
	Location  *string
}

func NewBooking(p NewBookingParams) *Booking {
	return &Booking{
		ID:              uuid.NewString(),
		TenantID:        p.TenantID,
		EventID:         p.EventID,
		InviteeID:       p.InviteeID,
		StartTime:       p.Start,
		EndTime:         p.End,
		CustomerName:    p.Name,
		CustomerEmail:   p.Email,
		CustomerNote:    p.Note,
		Location:        p.Location,
		Status:          StatusConfirmed,
		ManagementToken: NewToken(24),
	}
}

// NewToken returns a hex token of 2*n characters from crypto/rand.
func NewToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand does not fail on supported platforms
	}
	return hex.EncodeToString(b)
}
