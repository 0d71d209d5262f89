package models

import "time"

// ===============================
// Sync Gap Reasons
// ===============================

const (
	SyncGapAuthExpired        = "auth_expired"
	SyncGapProviderPermanent  = "provider_permanent"
	SyncGapRetriesExhausted   = "retries_exhausted"
	SyncGapCalendarDisconnect = "calendar_disconnected"
)

// SyncGap records a booking whose external calendar state could not be
// brought in line with the local record. The reconciler re-drives open
// gaps; operators can inspect and retry them.
type SyncGap struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID uint    `json:"booking_id"`
	Booking   Booking `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"booking"`

	WorkshopID uint `gorm:"index" json:"workshop_id"`

	OwnerType string `gorm:"size:10" json:"owner_type"`
	OwnerID   uint   `json:"owner_id"`

	Action string `gorm:"size:10" json:"action"`
	Reason string `gorm:"size:30" json:"reason"`
	Detail string `gorm:"size:255" json:"detail"`

	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
