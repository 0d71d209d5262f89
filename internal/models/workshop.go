package models

import "time"

// ===============================
// Calendar Mode
// ===============================

// CalendarMode decides which external calendar bookings are synced to:
// the workshop's own account or the assigned employee's account.
const (
	CalendarModeWorkshop  = "workshop"
	CalendarModeEmployees = "employees"
)

type Workshop struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"size:100;uniqueIndex;not null" json:"slug"`

	Phone   string `gorm:"size:20" json:"phone"`
	Address string `gorm:"size:255" json:"address"`

	Timezone     string `gorm:"size:40" json:"timezone"`
	CalendarMode string `gorm:"size:20;default:'workshop'" json:"calendar_mode"`

	MinAdvanceMinutes int `gorm:"default:120" json:"min_advance_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
