package booking

import (
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Confirm moves a pending booking to confirmed. eventID is empty for a
// local-only confirmation (no external calendar event exists).
func Confirm(b *models.Booking, eventID string, now time.Time) error {
	if err := CanConfirm(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusConfirmed)
	if eventID != "" {
		b.ExternalEventID = eventID
	}
	b.ConfirmedAt = &now
	return nil
}

func Cancel(b *models.Booking, now time.Time) error {
	if err := CanCancel(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	return nil
}

// MarkRescheduled retires a confirmed booking in favor of a replacement.
// The superseding reference is linked when the replacement row exists.
func MarkRescheduled(b *models.Booking, now time.Time) error {
	if err := CanReschedule(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusRescheduled)
	b.CancelledAt = &now
	return nil
}
