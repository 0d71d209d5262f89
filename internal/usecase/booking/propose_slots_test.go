package booking

import (
	"context"
	"testing"
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

func TestProposeSlotsHonorsScheduleAndAdvance(t *testing.T) {
	env := newTestEnv(t)

	slots, err := env.propose.Execute(context.Background(), ProposeSlotsInput{
		WorkshopID: 1, Date: "2026-03-02", DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("open Monday must offer slots")
	}

	for _, s := range slots {
		if s.Start >= "12:00" && s.Start < "13:00" {
			t.Errorf("slot %s starts inside the break", s.Start)
		}
		if s.End > "17:00" {
			t.Errorf("slot %s-%s runs past closing", s.Start, s.End)
		}
	}

	if slots[0].Start != "08:00" {
		t.Errorf("first slot = %s, want 08:00", slots[0].Start)
	}
	last := slots[len(slots)-1]
	if last.Start != "16:00" {
		t.Errorf("last slot = %s, want 16:00 for a 60min job until 17:00", last.Start)
	}
}

func TestProposeSlotsFiltersMinimumAdvance(t *testing.T) {
	env := newTestEnv(t)

	// 09:30 local: everything before 11:30 is too soon
	loc, _ := time.LoadLocation("Europe/Berlin")
	env.clock.Set(time.Date(2026, 3, 2, 9, 30, 0, 0, loc))

	slots, err := env.propose.Execute(context.Background(), ProposeSlotsInput{
		WorkshopID: 1, Date: "2026-03-02", DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	for _, s := range slots {
		if s.Start < "11:30" {
			t.Errorf("slot %s violates the two-hour minimum advance", s.Start)
		}
	}
}

func TestProposeSlotsClosedDayIsEmpty(t *testing.T) {
	env := newTestEnv(t)

	// Sunday 2026-03-01 has no schedule row
	slots, err := env.propose.Execute(context.Background(), ProposeSlotsInput{
		WorkshopID: 1, Date: "2026-03-01", DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("closed day must be empty, got %v", slots)
	}
}

func TestProposeSlotsEmployeeMode(t *testing.T) {
	env := newTestEnv(t)

	env.repo.workshops[1].CalendarMode = models.CalendarModeEmployees
	env.repo.employees[7] = &models.Employee{ID: 7, WorkshopID: 1, Name: "Anna Schmidt", Active: true}
	env.repo.addWorkingHours(models.OwnerTypeEmployee, 7, models.WorkingHours{
		Weekday:   1,
		Open:      true,
		StartTime: "10:00",
		EndTime:   "14:00",
	})

	empID := uint(7)
	slots, err := env.propose.Execute(context.Background(), ProposeSlotsInput{
		WorkshopID: 1, EmployeeID: &empID, Date: "2026-03-02", DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if len(slots) == 0 || slots[0].Start != "10:00" {
		t.Fatalf("employee schedule must drive the slots, got %v", slots)
	}

	unknown := uint(99)
	if _, err := env.propose.Execute(context.Background(), ProposeSlotsInput{
		WorkshopID: 1, EmployeeID: &unknown, Date: "2026-03-02",
	}); !httperr.IsBusiness(err, "employee_not_found") {
		t.Errorf("expected employee_not_found, got %v", err)
	}
}

func TestProposeSlotsErrors(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.propose.Execute(context.Background(), ProposeSlotsInput{
		WorkshopID: 9, Date: "2026-03-02",
	}); !httperr.IsBusiness(err, "workshop_not_found") {
		t.Errorf("expected workshop_not_found, got %v", err)
	}

	if _, err := env.propose.Execute(context.Background(), ProposeSlotsInput{
		WorkshopID: 1, Date: "02.03.2026",
	}); !httperr.IsBusiness(err, "invalid_date") {
		t.Errorf("expected invalid_date, got %v", err)
	}
}
