package booking

import (
	"testing"
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

func TestFreeSlotsExcludesBusyIntervals(t *testing.T) {
	day := monday(t)
	windows := []Window{{Start: at(t, day, "09:00"), End: at(t, day, "12:00")}}
	busy := []Interval{{Start: at(t, day, "10:00"), End: at(t, day, "11:00")}}

	slots := FreeSlots(windows, busy, 60*time.Minute, SlotStep)

	for _, s := range slots {
		end := s.Add(60 * time.Minute)
		if s.Before(at(t, day, "11:00")) && end.After(at(t, day, "10:00")) {
			t.Errorf("slot %v overlaps the busy interval", s.Format("15:04"))
		}
	}

	// 09:00 fits before the busy hour, 11:00 fits exactly after it
	want := map[string]bool{"09:00": true, "11:00": true}
	got := map[string]bool{}
	for _, s := range slots {
		got[s.Format("15:04")] = true
	}
	for hm := range want {
		if !got[hm] {
			t.Errorf("expected slot %s in %v", hm, slots)
		}
	}
	if got["10:00"] || got["10:45"] {
		t.Errorf("slot inside busy hour returned: %v", slots)
	}
}

func TestFreeSlotsRespectsWindowEnd(t *testing.T) {
	day := monday(t)
	windows := []Window{{Start: at(t, day, "16:00"), End: at(t, day, "17:00")}}

	slots := FreeSlots(windows, nil, 60*time.Minute, SlotStep)
	if len(slots) != 1 || !slots[0].Equal(at(t, day, "16:00")) {
		t.Fatalf("only 16:00 fits a 60min job before 17:00, got %v", slots)
	}
}

func TestFreeSlotsClosedDay(t *testing.T) {
	if slots := FreeSlots(nil, nil, 60*time.Minute, SlotStep); slots != nil {
		t.Fatalf("closed day must yield no slots, got %v", slots)
	}
}

// Scenario: Monday 08:00-17:00 with a 12:00-13:00 break. A 60-minute job
// at 16:30 runs past closing; the same job at 09:00 is fine.
func TestIsFreeMondayScenario(t *testing.T) {
	day := monday(t)
	wh := &models.WorkingHours{
		Open:       true,
		StartTime:  "08:00",
		EndTime:    "17:00",
		BreakStart: "12:00",
		BreakEnd:   "13:00",
	}
	windows := OpenWindows(wh, day)

	if IsFree(windows, nil, at(t, day, "16:30"), 60*time.Minute) {
		t.Error("16:30 + 60min ends after closing and must be rejected")
	}
	if !IsFree(windows, nil, at(t, day, "09:00"), 60*time.Minute) {
		t.Error("09:00 + 60min fits the morning window and must be accepted")
	}
	if IsFree(windows, nil, at(t, day, "11:30"), 60*time.Minute) {
		t.Error("11:30 + 60min crosses the break and must be rejected")
	}
}

func TestIsFreeBackToBackBookings(t *testing.T) {
	day := monday(t)
	windows := []Window{{Start: at(t, day, "09:00"), End: at(t, day, "17:00")}}
	busy := []Interval{{Start: at(t, day, "10:00"), End: at(t, day, "11:00")}}

	// half-open intervals: an appointment may start exactly when the
	// previous one ends
	if !IsFree(windows, busy, at(t, day, "11:00"), 60*time.Minute) {
		t.Error("booking starting at the end of a busy interval must be free")
	}
	if !IsFree(windows, busy, at(t, day, "09:00"), 60*time.Minute) {
		t.Error("booking ending at the start of a busy interval must be free")
	}
	if IsFree(windows, busy, at(t, day, "10:30"), 60*time.Minute) {
		t.Error("overlapping booking must not be free")
	}
}

func TestBusyIntervals(t *testing.T) {
	day := monday(t)
	bookings := []models.Booking{
		{ID: 1, Status: string(StatusConfirmed), AppointmentStart: at(t, day, "09:00"), AppointmentEnd: at(t, day, "10:00")},
		{ID: 2, Status: string(StatusPending), AppointmentStart: at(t, day, "10:00"), AppointmentEnd: at(t, day, "11:00")},
		{ID: 3, Status: string(StatusCancelled), AppointmentStart: at(t, day, "11:00"), AppointmentEnd: at(t, day, "12:00")},
		{ID: 4, Status: string(StatusRescheduled), AppointmentStart: at(t, day, "13:00"), AppointmentEnd: at(t, day, "14:00")},
	}

	busy := BusyIntervals(bookings, 0)
	if len(busy) != 2 {
		t.Fatalf("only pending and confirmed occupy slots, got %d intervals", len(busy))
	}

	busy = BusyIntervals(bookings, 1)
	if len(busy) != 1 {
		t.Fatalf("excluded booking must not block, got %d intervals", len(busy))
	}
	if !busy[0].Start.Equal(at(t, day, "10:00")) {
		t.Errorf("wrong interval survived the exclusion: %v", busy[0])
	}
}
