package models

import "time"

// ===============================
// Offer Status
// ===============================

const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusDeclined = "declined"
)

type Offer struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TireRequestID uint        `json:"tire_request_id"`
	TireRequest   TireRequest `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tire_request"`

	WorkshopID uint     `json:"workshop_id"`
	Workshop   Workshop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"workshop"`

	PriceCents      int `json:"price_cents"`
	DurationMinutes int `gorm:"default:60" json:"duration_minutes"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
