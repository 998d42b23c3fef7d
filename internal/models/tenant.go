package models

import "time"

// Tenant carries the display attributes rendered into notification
// emails. Account management itself lives outside this service.
type Tenant struct {
	ID      string  `gorm:"primaryKey" json:"id"`
	Name    string  `gorm:"not null" json:"name"`
	LogoURL *string `json:"logo_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
