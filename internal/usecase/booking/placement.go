package booking

import (
	"context"
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/clock"
	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
	"github.com/Zdenek156/bereifung24-scheduling/internal/timezone"
)

// placement is the validated where-and-when of one booking attempt,
// shared by the create and reschedule transitions.
type placement struct {
	shop    *models.Workshop
	emp     *models.Employee
	owner   domain.Owner
	windows []domain.Window

	start    time.Time
	end      time.Time
	duration time.Duration
}

func resolvePlacement(
	ctx context.Context,
	repo domain.Repository,
	clk clock.Clock,
	shop *models.Workshop,
	employeeID *uint,
	dateStr string,
	timeStr string,
	durationMinutes int,
) (*placement, error) {

	loc := timezone.Location(shop.Timezone)

	start, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	minAdvance := shop.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 120
	}
	now := clk.Now().In(loc)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	if durationMinutes <= 0 {
		durationMinutes = 60
	}
	duration := time.Duration(durationMinutes) * time.Minute
	end := start.Add(duration)

	var emp *models.Employee
	if shop.CalendarMode == models.CalendarModeEmployees && employeeID != nil {
		emp, err = repo.GetEmployee(ctx, shop.ID, *employeeID)
		if err != nil {
			return nil, httperr.ErrBusiness("employee_not_found")
		}
	}

	// credentials are loaded here, outside any booking critical section
	workshopCred, _ := repo.GetCredential(ctx, models.OwnerTypeWorkshop, shop.ID)
	var employeeCred *models.CalendarCredential
	if emp != nil {
		employeeCred, _ = repo.GetCredential(ctx, models.OwnerTypeEmployee, emp.ID)
	}

	owner := domain.ResolveOwner(shop, emp, workshopCred, employeeCred)

	schedType, schedID, err := domain.SplitOwnerKey(owner.ScheduleKey)
	if err != nil {
		return nil, err
	}

	wh, err := repo.GetWorkingHours(ctx, schedType, schedID, int(start.Weekday()))
	if err != nil {
		// no schedule row for the weekday means closed
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	windows := domain.OpenWindows(wh, start)
	if !domain.WithinWindows(windows, start, end) {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	return &placement{
		shop:     shop,
		emp:      emp,
		owner:    owner,
		windows:  windows,
		start:    start,
		end:      end,
		duration: duration,
	}, nil
}

func (p *placement) dayBounds() (time.Time, time.Time) {
	dayStart := time.Date(
		p.start.Year(), p.start.Month(), p.start.Day(),
		0, 0, 0, 0,
		p.start.Location(),
	)
	return dayStart, dayStart.AddDate(0, 0, 1)
}

func (p *placement) dateString() string {
	return p.start.Format("2006-01-02")
}
