package booking

import (
	"context"
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/cache"
	"github.com/Zdenek156/bereifung24-scheduling/internal/clock"
	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
	"github.com/Zdenek156/bereifung24-scheduling/internal/timezone"
)

type ProposeSlots struct {
	repo  domain.Repository
	cache *cache.Availability
	clock clock.Clock
}

func NewProposeSlots(repo domain.Repository, slotCache *cache.Availability, clk clock.Clock) *ProposeSlots {
	return &ProposeSlots{
		repo:  repo,
		cache: slotCache,
		clock: clk,
	}
}

type ProposeSlotsInput struct {
	WorkshopID      uint
	EmployeeID      *uint
	Date            string
	DurationMinutes int
}

func (uc *ProposeSlots) Execute(
	ctx context.Context,
	in ProposeSlotsInput,
) ([]domain.TimeSlot, error) {

	shop, err := uc.repo.GetWorkshopByID(ctx, in.WorkshopID)
	if err != nil {
		return nil, httperr.ErrBusiness("workshop_not_found")
	}

	loc := timezone.Location(shop.Timezone)
	date, err := time.ParseInLocation("2006-01-02", in.Date, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	if in.DurationMinutes <= 0 {
		in.DurationMinutes = 60
	}
	duration := time.Duration(in.DurationMinutes) * time.Minute

	ownerType, ownerID := models.OwnerTypeWorkshop, shop.ID
	if shop.CalendarMode == models.CalendarModeEmployees && in.EmployeeID != nil {
		emp, err := uc.repo.GetEmployee(ctx, shop.ID, *in.EmployeeID)
		if err != nil {
			return nil, httperr.ErrBusiness("employee_not_found")
		}
		ownerType, ownerID = models.OwnerTypeEmployee, emp.ID
	}
	ownerKey := domain.OwnerKey(ownerType, ownerID)

	if slots, ok := uc.cache.Get(ctx, ownerKey, in.Date, in.DurationMinutes); ok {
		return slots, nil
	}

	wh, err := uc.repo.GetWorkingHours(ctx, ownerType, ownerID, int(date.Weekday()))
	if err != nil || !wh.Open {
		return []domain.TimeSlot{}, nil
	}

	windows := domain.OpenWindows(wh, date)

	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)
	existing, err := uc.repo.ListBookingsForDay(ctx, ownerKey, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	starts := domain.FreeSlots(windows, domain.BusyIntervals(existing, 0), duration, domain.SlotStep)

	minAdvance := shop.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 120
	}
	earliest := uc.clock.Now().In(loc).Add(time.Duration(minAdvance) * time.Minute)

	slots := []domain.TimeSlot{}
	for _, s := range starts {
		if s.Before(earliest) {
			continue
		}
		slots = append(slots, domain.TimeSlot{
			Start: s.Format("15:04"),
			End:   s.Add(duration).Format("15:04"),
		})
	}

	uc.cache.Set(ctx, ownerKey, in.Date, in.DurationMinutes, slots)
	return slots, nil
}
