package models

import "time"

// ===============================
// Calendar Owner Types
// ===============================

const (
	OwnerTypeWorkshop = "workshop"
	OwnerTypeEmployee = "employee"
)

// Booking is one scheduled appointment for an accepted offer.
//
// OwnerKey identifies the schedule (workshop or employee) the appointment
// occupies. Together with AppointmentStart it is covered by a partial
// unique index so two non-cancelled bookings can never share a slot.
type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex" json:"reference"`

	TireRequestID uint        `json:"tire_request_id"`
	TireRequest   TireRequest `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"tire_request"`

	OfferID uint  `json:"offer_id"`
	Offer   Offer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"offer"`

	WorkshopID uint     `json:"workshop_id"`
	Workshop   Workshop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"workshop"`

	EmployeeID *uint     `json:"employee_id,omitempty"`
	Employee   *Employee `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"employee,omitempty"`

	OwnerKey string `gorm:"size:40;index" json:"owner_key"`

	AppointmentStart time.Time `json:"appointment_start"`
	AppointmentEnd   time.Time `json:"appointment_end"`
	DurationMinutes  int       `json:"duration_minutes"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`

	ExternalEventID string `gorm:"size:128" json:"external_event_id,omitempty"`

	WorkshopNotes string `gorm:"size:255" json:"workshop_notes"`

	SupersededByID *uint `json:"superseded_by_id,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
