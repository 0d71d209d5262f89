package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/Zdenek156/bereifung24-scheduling/internal/audit"
	"github.com/Zdenek156/bereifung24-scheduling/internal/cache"
	"github.com/Zdenek156/bereifung24-scheduling/internal/calsync"
	"github.com/Zdenek156/bereifung24-scheduling/internal/clock"
	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/lock"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type RescheduleBookingInput struct {
	WorkshopID uint
	BookingID  uint

	EmployeeID *uint

	Date            string
	Time            string
	DurationMinutes int
}

// ======================================================
// USE CASE
// ======================================================

// RescheduleBooking supersedes a confirmed booking with a replacement at
// the new time. The external event is kept and patched in place: the
// replacement inherits the original event ID.
type RescheduleBooking struct {
	repo   domain.Repository
	locks  *lock.Keyed
	syncer *calsync.Worker
	audit  *audit.Dispatcher
	cache  *cache.Availability
	clock  clock.Clock
}

func NewRescheduleBooking(
	repo domain.Repository,
	locks *lock.Keyed,
	syncer *calsync.Worker,
	dispatcher *audit.Dispatcher,
	slotCache *cache.Availability,
	clk clock.Clock,
) *RescheduleBooking {
	return &RescheduleBooking{
		repo:   repo,
		locks:  locks,
		syncer: syncer,
		audit:  dispatcher,
		cache:  slotCache,
		clock:  clk,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *RescheduleBooking) Execute(
	ctx context.Context,
	in RescheduleBookingInput,
) (*models.Booking, error) {

	old, err := uc.repo.GetBooking(ctx, in.WorkshopID, in.BookingID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	if err := domain.CanReschedule(domain.Status(old.Status)); err != nil {
		return nil, err
	}

	shop, err := uc.repo.GetWorkshopByID(ctx, old.WorkshopID)
	if err != nil {
		return nil, err
	}

	employeeID := in.EmployeeID
	if employeeID == nil {
		employeeID = old.EmployeeID
	}
	duration := in.DurationMinutes
	if duration <= 0 {
		duration = old.DurationMinutes
	}

	p, err := resolvePlacement(ctx, uc.repo, uc.clock, shop, employeeID, in.Date, in.Time, duration)
	if err != nil {
		return nil, err
	}

	replacement := &models.Booking{
		Reference:        uuid.NewString(),
		TireRequestID:    old.TireRequestID,
		OfferID:          old.OfferID,
		WorkshopID:       shop.ID,
		OwnerKey:         p.owner.ScheduleKey,
		AppointmentStart: p.start,
		AppointmentEnd:   p.end,
		DurationMinutes:  int(p.duration.Minutes()),
		Status:           string(domain.InitialStatus()),
		ExternalEventID:  old.ExternalEventID,
		WorkshopNotes:    old.WorkshopNotes,
	}
	if p.emp != nil {
		replacement.EmployeeID = &p.emp.ID
	}

	oldDate := old.AppointmentStart.Format("2006-01-02")
	oldOwnerKey := old.OwnerKey

	if err := uc.supersede(ctx, p, old, replacement); err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, oldOwnerKey, oldDate)
	uc.cache.Invalidate(ctx, p.owner.ScheduleKey, p.dateString())

	uc.audit.Dispatch(audit.Event{
		WorkshopID: shop.ID,
		Action:     "booking_rescheduled",
		Entity:     "booking",
		EntityID:   &old.ID,
		Metadata:   map[string]uint{"superseded_by": replacement.ID},
	})

	if p.owner.Kind == domain.OwnerNone {
		if err := domain.Confirm(replacement, "", uc.clock.Now()); err == nil {
			if err := uc.repo.UpdateBooking(ctx, replacement); err != nil {
				return nil, err
			}
		}
		if replacement.ExternalEventID != "" {
			// an event exists but the calendar is no longer connected;
			// leave a gap so the stale times are visible to the operator
			ownerType, ownerID := p.owner.SyncRef()
			gap := &models.SyncGap{
				BookingID:  replacement.ID,
				WorkshopID: shop.ID,
				OwnerType:  ownerType,
				OwnerID:    ownerID,
				Action:     string(calsync.ActionUpdate),
				Reason:     models.SyncGapCalendarDisconnect,
			}
			_ = uc.repo.CreateSyncGap(ctx, gap)
		}
		return replacement, nil
	}

	action := calsync.ActionCreate
	if replacement.ExternalEventID != "" {
		action = calsync.ActionUpdate
	}

	ownerType, ownerID := p.owner.SyncRef()
	uc.syncer.Sync(ctx, calsync.Job{
		BookingID: replacement.ID,
		Action:    action,
		OwnerType: ownerType,
		OwnerID:   ownerID,
	})

	return uc.repo.GetBookingByID(ctx, replacement.ID)
}

func (uc *RescheduleBooking) supersede(
	ctx context.Context,
	p *placement,
	old *models.Booking,
	replacement *models.Booking,
) error {

	uc.locks.Lock(p.owner.ScheduleKey)
	defer uc.locks.Unlock(p.owner.ScheduleKey)

	dayStart, dayEnd := p.dayBounds()
	existing, err := uc.repo.ListBookingsForDay(ctx, p.owner.ScheduleKey, dayStart, dayEnd)
	if err != nil {
		return err
	}

	// the booking being moved does not block its own replacement
	busy := domain.BusyIntervals(existing, old.ID)
	if !domain.IsFree(p.windows, busy, p.start, p.duration) {
		return httperr.ErrBusiness("slot_unavailable")
	}

	if err := domain.MarkRescheduled(old, uc.clock.Now()); err != nil {
		return err
	}
	old.ExternalEventID = "" // the event moves to the replacement

	return uc.repo.SupersedeBooking(ctx, old, replacement)
}
