package booking

import (
	"context"
	"log"

	"github.com/Zdenek156/bereifung24-scheduling/internal/audit"
	"github.com/Zdenek156/bereifung24-scheduling/internal/cache"
	"github.com/Zdenek156/bereifung24-scheduling/internal/calsync"
	"github.com/Zdenek156/bereifung24-scheduling/internal/clock"
	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/lock"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

type CancelBooking struct {
	repo   domain.Repository
	locks  *lock.Keyed
	syncer *calsync.Worker
	audit  *audit.Dispatcher
	cache  *cache.Availability
	clock  clock.Clock
}

func NewCancelBooking(
	repo domain.Repository,
	locks *lock.Keyed,
	syncer *calsync.Worker,
	dispatcher *audit.Dispatcher,
	slotCache *cache.Availability,
	clk clock.Clock,
) *CancelBooking {
	return &CancelBooking{
		repo:   repo,
		locks:  locks,
		syncer: syncer,
		audit:  dispatcher,
		cache:  slotCache,
		clock:  clk,
	}
}

func (uc *CancelBooking) Execute(
	ctx context.Context,
	workshopID uint,
	bookingID uint,
) (*models.Booking, error) {

	b, err := uc.repo.GetBooking(ctx, workshopID, bookingID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	b, cancelled, err := uc.retire(ctx, workshopID, b.OwnerKey, bookingID)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		// cancelling twice is a no-op success
		return b, nil
	}

	uc.cache.Invalidate(ctx, b.OwnerKey, b.AppointmentStart.Format("2006-01-02"))

	uc.audit.Dispatch(audit.Event{
		WorkshopID: workshopID,
		Action:     "booking_cancelled",
		Entity:     "booking",
		EntityID:   &b.ID,
	})

	// best-effort: the local cancellation is authoritative, a stray
	// external event never blocks it
	if b.ExternalEventID != "" {
		ownerType, ownerID, err := domain.SplitOwnerKey(b.OwnerKey)
		if err != nil {
			log.Printf("cancel booking %d: %v", b.ID, err)
			return b, nil
		}
		uc.syncer.Enqueue(calsync.Job{
			BookingID: b.ID,
			Action:    calsync.ActionDelete,
			OwnerType: ownerType,
			OwnerID:   ownerID,
		})
	}

	return b, nil
}

// retire flips the booking to cancelled under the owner lock. The sync
// worker persists provider results under the same lock, so a sync
// finishing concurrently can neither resurrect the booking nor lose the
// event id it just stored.
func (uc *CancelBooking) retire(
	ctx context.Context,
	workshopID uint,
	ownerKey string,
	bookingID uint,
) (*models.Booking, bool, error) {
	uc.locks.Lock(ownerKey)
	defer uc.locks.Unlock(ownerKey)

	b, err := uc.repo.GetBooking(ctx, workshopID, bookingID)
	if err != nil {
		return nil, false, httperr.ErrBusiness("booking_not_found")
	}

	if domain.Status(b.Status) == domain.StatusCancelled {
		return b, false, nil
	}

	if err := domain.Cancel(b, uc.clock.Now()); err != nil {
		return nil, false, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, false, err
	}
	return b, true, nil
}
