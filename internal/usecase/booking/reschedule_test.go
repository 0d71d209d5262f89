package booking

import (
	"context"
	"testing"

	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

func TestRescheduleKeepsExternalEvent(t *testing.T) {
	env := newTestEnv(t)
	env.connectWorkshopCalendar()

	b, err := env.create.Execute(context.Background(), createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	eventID := b.ExternalEventID

	nb, err := env.reschedule.Execute(context.Background(), RescheduleBookingInput{
		WorkshopID: 1,
		BookingID:  b.ID,
		Date:       "2026-03-02",
		Time:       "14:00",
	})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	if nb.ID == b.ID {
		t.Error("reschedule must produce a replacement booking")
	}
	if nb.Status != string(domain.StatusConfirmed) {
		t.Errorf("replacement status = %q", nb.Status)
	}
	// update-in-place: same provider event, patched to the new time
	if nb.ExternalEventID != eventID {
		t.Errorf("replacement event = %q, want inherited %q", nb.ExternalEventID, eventID)
	}

	env.gateway.mu.Lock()
	if len(env.gateway.updated) != 1 || env.gateway.updated[0] != eventID {
		t.Errorf("expected one patch of %q, got %v", eventID, env.gateway.updated)
	}
	if len(env.gateway.created) != 1 {
		t.Errorf("no second event may be created, got %d", len(env.gateway.created))
	}
	env.gateway.mu.Unlock()

	old, _ := env.repo.GetBookingByID(context.Background(), b.ID)
	if old.Status != string(domain.StatusRescheduled) {
		t.Errorf("old status = %q", old.Status)
	}
	if old.ExternalEventID != "" {
		t.Errorf("the event moved to the replacement, old still has %q", old.ExternalEventID)
	}
	if old.SupersededByID == nil || *old.SupersededByID != nb.ID {
		t.Errorf("superseded link = %v, want %d", old.SupersededByID, nb.ID)
	}
}

func TestRescheduleFreesOldSlotAndTakesNew(t *testing.T) {
	env := newTestEnv(t)

	b, err := env.create.Execute(context.Background(), createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.reschedule.Execute(context.Background(), RescheduleBookingInput{
		WorkshopID: 1, BookingID: b.ID, Date: "2026-03-02", Time: "10:00",
	}); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	// old 09:00 slot is free again, new 10:00 is taken
	if _, err := env.create.Execute(context.Background(), createInput()); err != nil {
		t.Errorf("old slot must be bookable: %v", err)
	}
	in := createInput()
	in.Time = "10:00"
	if _, err := env.create.Execute(context.Background(), in); !httperr.IsBusiness(err, "slot_unavailable") {
		t.Errorf("new slot must be taken, got %v", err)
	}
}

func TestRescheduleToOccupiedSlotFails(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.create.Execute(context.Background(), createInput())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}

	in := createInput()
	in.Time = "10:00"
	second, err := env.create.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if _, err := env.reschedule.Execute(context.Background(), RescheduleBookingInput{
		WorkshopID: 1, BookingID: second.ID, Date: "2026-03-02", Time: "09:00",
	}); !httperr.IsBusiness(err, "slot_unavailable") {
		t.Fatalf("expected slot_unavailable, got %v", err)
	}

	// failed reschedule leaves both bookings untouched
	unchanged, _ := env.repo.GetBookingByID(context.Background(), second.ID)
	if unchanged.Status != string(domain.StatusConfirmed) {
		t.Errorf("failed reschedule altered the booking: %q", unchanged.Status)
	}
	_ = first
}

func TestRescheduleWithinSameOwnerOwnSlotOk(t *testing.T) {
	env := newTestEnv(t)

	b, err := env.create.Execute(context.Background(), createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// shifting by 15 minutes overlaps the booking's own old interval,
	// which must not block the move
	nb, err := env.reschedule.Execute(context.Background(), RescheduleBookingInput{
		WorkshopID: 1, BookingID: b.ID, Date: "2026-03-02", Time: "09:15",
	})
	if err != nil {
		t.Fatalf("reschedule over own interval: %v", err)
	}
	if nb.AppointmentStart.Format("15:04") != "09:15" {
		t.Errorf("moved to %s", nb.AppointmentStart.Format("15:04"))
	}
}

func TestRescheduleGuards(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.reschedule.Execute(context.Background(), RescheduleBookingInput{
		WorkshopID: 1, BookingID: 99, Date: "2026-03-02", Time: "14:00",
	}); !httperr.IsBusiness(err, "booking_not_found") {
		t.Errorf("unknown booking: got %v", err)
	}

	b, err := env.create.Execute(context.Background(), createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.cancel.Execute(context.Background(), 1, b.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := env.reschedule.Execute(context.Background(), RescheduleBookingInput{
		WorkshopID: 1, BookingID: b.ID, Date: "2026-03-02", Time: "14:00",
	}); !httperr.IsBusiness(err, "invalid_state") {
		t.Errorf("cancelled booking cannot be rescheduled, got %v", err)
	}
}

func TestRescheduleAfterDisconnectRecordsGap(t *testing.T) {
	env := newTestEnv(t)
	env.connectWorkshopCalendar()

	b, err := env.create.Execute(context.Background(), createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ExternalEventID == "" {
		t.Fatal("fixture needs a synced booking")
	}

	// calendar disconnected after the first sync
	env.repo.mu.Lock()
	delete(env.repo.credentials, "workshop:1")
	env.repo.mu.Unlock()

	nb, err := env.reschedule.Execute(context.Background(), RescheduleBookingInput{
		WorkshopID: 1, BookingID: b.ID, Date: "2026-03-02", Time: "14:00",
	})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if nb.Status != string(domain.StatusConfirmed) {
		t.Errorf("replacement must confirm local-only, got %q", nb.Status)
	}

	gaps := env.repo.openGaps()
	if len(gaps) != 1 || gaps[0].Reason != models.SyncGapCalendarDisconnect {
		t.Fatalf("expected one calendar_disconnected gap, got %+v", gaps)
	}
}
