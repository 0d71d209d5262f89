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

type CreateBookingInput struct {
	WorkshopID uint
	OfferID    uint

	EmployeeID *uint

	Date            string
	Time            string
	DurationMinutes int
	Notes           string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo   domain.Repository
	locks  *lock.Keyed
	syncer *calsync.Worker
	audit  *audit.Dispatcher
	cache  *cache.Availability
	clock  clock.Clock
}

func NewCreateBooking(
	repo domain.Repository,
	locks *lock.Keyed,
	syncer *calsync.Worker,
	dispatcher *audit.Dispatcher,
	slotCache *cache.Availability,
	clk clock.Clock,
) *CreateBooking {
	return &CreateBooking{
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

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	offer, err := uc.repo.GetOffer(ctx, in.OfferID)
	if err != nil || offer.WorkshopID != in.WorkshopID {
		return nil, httperr.ErrBusiness("offer_not_found")
	}
	if offer.Status != models.OfferStatusAccepted {
		return nil, httperr.ErrBusiness("offer_not_accepted")
	}

	shop, err := uc.repo.GetWorkshopByID(ctx, offer.WorkshopID)
	if err != nil {
		return nil, err
	}

	duration := in.DurationMinutes
	if duration <= 0 {
		duration = offer.DurationMinutes
	}

	p, err := resolvePlacement(ctx, uc.repo, uc.clock, shop, in.EmployeeID, in.Date, in.Time, duration)
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		Reference:        uuid.NewString(),
		TireRequestID:    offer.TireRequestID,
		OfferID:          offer.ID,
		WorkshopID:       shop.ID,
		OwnerKey:         p.owner.ScheduleKey,
		AppointmentStart: p.start,
		AppointmentEnd:   p.end,
		DurationMinutes:  int(p.duration.Minutes()),
		Status:           string(domain.InitialStatus()),
		WorkshopNotes:    in.Notes,
	}
	if p.emp != nil {
		b.EmployeeID = &p.emp.ID
	}

	// The free-check and the pending insert form the one concurrency-
	// critical region, serialized per schedule owner. Provider calls
	// stay outside.
	if err := uc.reserve(ctx, p, b); err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, p.owner.ScheduleKey, p.dateString())

	uc.audit.Dispatch(audit.Event{
		WorkshopID: shop.ID,
		Action:     "booking_created",
		Entity:     "booking",
		EntityID:   &b.ID,
	})

	if p.owner.Kind == domain.OwnerNone {
		// no calendar capability: confirm immediately, local-only
		if err := domain.Confirm(b, "", uc.clock.Now()); err == nil {
			if err := uc.repo.UpdateBooking(ctx, b); err != nil {
				return nil, err
			}
		}
		return b, nil
	}

	ownerType, ownerID := p.owner.SyncRef()
	uc.syncer.Sync(ctx, calsync.Job{
		BookingID: b.ID,
		Action:    calsync.ActionCreate,
		OwnerType: ownerType,
		OwnerID:   ownerID,
	})

	// return the post-sync snapshot
	return uc.repo.GetBookingByID(ctx, b.ID)
}

func (uc *CreateBooking) reserve(ctx context.Context, p *placement, b *models.Booking) error {
	uc.locks.Lock(p.owner.ScheduleKey)
	defer uc.locks.Unlock(p.owner.ScheduleKey)

	dayStart, dayEnd := p.dayBounds()
	existing, err := uc.repo.ListBookingsForDay(ctx, p.owner.ScheduleKey, dayStart, dayEnd)
	if err != nil {
		return err
	}

	if !domain.IsFree(p.windows, domain.BusyIntervals(existing, 0), p.start, p.duration) {
		return httperr.ErrBusiness("slot_unavailable")
	}

	return uc.repo.CreateBooking(ctx, b)
}
