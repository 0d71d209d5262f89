package booking

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

// ===============================
// Calendar Owner Selection
// ===============================

type OwnerKind string

const (
	OwnerWorkshop OwnerKind = "workshop"
	OwnerEmployee OwnerKind = "employee"

	// OwnerNone means no external calendar is available: the booking
	// proceeds local-only and is confirmed without an event.
	OwnerNone OwnerKind = "none"
)

// Owner is the resolved calendar ownership for one booking attempt.
// ScheduleKey identifies the schedule the appointment occupies; it is set
// even in local-only mode, because the slot is taken either way.
type Owner struct {
	Kind        OwnerKind
	WorkshopID  uint
	EmployeeID  *uint
	Credential  *models.CalendarCredential
	ScheduleKey string
}

// SyncRef returns the credential owner the sync worker should load.
// Only meaningful when Kind is not OwnerNone.
func (o Owner) SyncRef() (string, uint) {
	if o.Kind == OwnerEmployee && o.EmployeeID != nil {
		return models.OwnerTypeEmployee, *o.EmployeeID
	}
	return models.OwnerTypeWorkshop, o.WorkshopID
}

func CredentialLive(c *models.CalendarCredential) bool {
	return c != nil && c.CalendarID != "" && c.RefreshToken != ""
}

// ResolveOwner decides which calendar owns the booking. Workshop mode with
// a live workshop credential wins; employee mode needs both an assigned
// employee and that employee's live credential. Everything else falls back
// to local-only so scheduling never blocks on calendar availability.
func ResolveOwner(w *models.Workshop, emp *models.Employee, workshopCred, employeeCred *models.CalendarCredential) Owner {
	var empID *uint
	if emp != nil {
		empID = &emp.ID
	}

	key := OwnerKey(models.OwnerTypeWorkshop, w.ID)
	if w.CalendarMode == models.CalendarModeEmployees && emp != nil {
		key = OwnerKey(models.OwnerTypeEmployee, emp.ID)
	}

	switch {
	case w.CalendarMode == models.CalendarModeWorkshop && CredentialLive(workshopCred):
		return Owner{
			Kind:        OwnerWorkshop,
			WorkshopID:  w.ID,
			EmployeeID:  empID,
			Credential:  workshopCred,
			ScheduleKey: key,
		}
	case w.CalendarMode == models.CalendarModeEmployees && emp != nil && CredentialLive(employeeCred):
		return Owner{
			Kind:        OwnerEmployee,
			WorkshopID:  w.ID,
			EmployeeID:  empID,
			Credential:  employeeCred,
			ScheduleKey: key,
		}
	default:
		return Owner{
			Kind:        OwnerNone,
			WorkshopID:  w.ID,
			EmployeeID:  empID,
			ScheduleKey: key,
		}
	}
}

func OwnerKey(ownerType string, ownerID uint) string {
	return fmt.Sprintf("%s:%d", ownerType, ownerID)
}

func SplitOwnerKey(key string) (string, uint, error) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("malformed owner key %q", key)
	}
	if parts[0] != models.OwnerTypeWorkshop && parts[0] != models.OwnerTypeEmployee {
		return "", 0, fmt.Errorf("unknown owner type %q", parts[0])
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("malformed owner key %q: %w", key, err)
	}
	return parts[0], uint(id), nil
}
