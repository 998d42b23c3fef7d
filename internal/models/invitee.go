package models

import (
	"time"

	"github.com/google/uuid"
)

type InviteeStatus string

const (
	InviteeActive  InviteeStatus = "active"
	InviteeUsed    InviteeStatus = "used"
	InviteeRevoked InviteeStatus = "revoked"
)

// Invitee is a single-use access grant for a restricted event. Its token
// moves active -> used exactly once, together with the booking write that
// consumed it, and back to active if that booking is cancelled.
type Invitee struct {
	ID       string  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID string  `gorm:"not null;index" json:"tenant_id"`
	EventID  string  `gorm:"type:uuid;not null;index" json:"event_id"`
	Token    string  `gorm:"not null;uniqueIndex" json:"token"`
	Email    *string `json:"email,omitempty"`

	Status InviteeStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewInvitee(tenantID, eventID string, email *string) *Invitee {
	return &Invitee{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		EventID:  eventID,
		Token:    NewToken(16),
		Email:    email,
		Status:   InviteeActive,
	}
}
