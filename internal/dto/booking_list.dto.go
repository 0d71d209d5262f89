package dto

import "time"

type BookingListDTO struct {
	ID               uint      `json:"id"`
	Reference        string    `json:"reference"`
	AppointmentStart time.Time `json:"appointment_start"`
	AppointmentEnd   time.Time `json:"appointment_end"`
	Status           string    `json:"status"`
	CustomerName     string    `json:"customer_name"`
	Vehicle          string    `json:"vehicle"`
	ServiceType      string    `json:"service_type"`
	EmployeeName     string    `json:"employee_name,omitempty"`
	Synced           bool      `json:"synced"`
	WorkshopNotes    string    `json:"workshop_notes,omitempty"`
}
