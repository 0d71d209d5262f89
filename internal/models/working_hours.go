package models

import "time"

// WorkingHours is one weekday row of an owner's schedule. Weekday follows
// Go's convention: 0 = Sunday .. 6 = Saturday. Times are "15:04" strings
// interpreted in the workshop's timezone.
type WorkingHours struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OwnerType string `gorm:"size:10;index:idx_working_hours_owner" json:"owner_type"`
	OwnerID   uint   `gorm:"index:idx_working_hours_owner" json:"owner_id"`

	Weekday int  `json:"weekday"`
	Open    bool `json:"open"`

	StartTime  string `gorm:"size:5" json:"start_time"`
	EndTime    string `gorm:"size:5" json:"end_time"`
	BreakStart string `gorm:"size:5" json:"break_start"`
	BreakEnd   string `gorm:"size:5" json:"break_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
