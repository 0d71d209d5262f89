package booking

import (
	"context"
	"time"

	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/dto"
	"github.com/Zdenek156/bereifung24-scheduling/internal/timezone"
)

type ListBookingsByDate struct {
	repo domain.Repository
}

func NewListBookingsByDate(
	repo domain.Repository,
) *ListBookingsByDate {
	return &ListBookingsByDate{
		repo: repo,
	}
}

func (uc *ListBookingsByDate) Execute(
	ctx context.Context,
	workshopID uint,
	date time.Time,
) ([]dto.BookingListDTO, error) {

	shop, err := uc.repo.GetWorkshopByID(ctx, workshopID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(shop.Timezone)

	start := time.Date(
		date.Year(),
		date.Month(),
		date.Day(),
		0, 0, 0, 0,
		loc,
	)
	end := start.Add(24 * time.Hour)

	bookings, err := uc.repo.ListWorkshopBookingsForDay(
		ctx,
		workshopID,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		item := dto.BookingListDTO{
			ID:               b.ID,
			Reference:        b.Reference,
			AppointmentStart: b.AppointmentStart,
			AppointmentEnd:   b.AppointmentEnd,
			Status:           b.Status,
			CustomerName:     b.TireRequest.CustomerName,
			Vehicle:          b.TireRequest.Vehicle,
			ServiceType:      b.TireRequest.ServiceType,
			Synced:           b.ExternalEventID != "",
			WorkshopNotes:    b.WorkshopNotes,
		}
		if b.Employee != nil {
			item.EmployeeName = b.Employee.Name
		}
		out = append(out, item)
	}

	return out, nil
}
