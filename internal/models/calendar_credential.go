package models

import "time"

// CalendarCredential holds the OAuth token pair for one calendar-owning
// entity. At most one live credential per owner (unique owner index).
type CalendarCredential struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OwnerType string `gorm:"size:10;uniqueIndex:idx_calendar_credentials_owner" json:"owner_type"`
	OwnerID   uint   `gorm:"uniqueIndex:idx_calendar_credentials_owner" json:"owner_id"`

	CalendarID string `gorm:"size:128" json:"calendar_id"`

	AccessToken  string    `gorm:"size:2048" json:"-"`
	RefreshToken string    `gorm:"size:512" json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
