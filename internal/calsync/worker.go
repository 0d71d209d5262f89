package calsync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/audit"
	"github.com/Zdenek156/bereifung24-scheduling/internal/calendar"
	"github.com/Zdenek156/bereifung24-scheduling/internal/clock"
	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/lock"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

// ===============================
// Sync Jobs
// ===============================

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Job struct {
	BookingID uint
	Action    Action
	OwnerType string
	OwnerID   uint
	Attempt   int
	GapID     *uint
}

// TokenSource is satisfied by calendar.TokenVault.
type TokenSource interface {
	AccessToken(ctx context.Context, cred *models.CalendarCredential) (string, error)
}

// ===============================
// Worker
// ===============================

// Worker brings external calendar state in line with local bookings.
// Local state is committed first and is authoritative; provider calls run
// outside every booking critical section, and only the short persist step
// afterwards re-enters the owner lock so a cancellation landing mid-call
// is never overwritten. Transient provider failures are retried with
// backoff a bounded number of times, then the booking is confirmed
// local-only and the gap recorded for reconciliation.
type Worker struct {
	repo    domain.Repository
	vault   TokenSource
	gateway calendar.Gateway
	audit   *audit.Dispatcher
	locks   *lock.Keyed
	clock   clock.Clock

	queue       chan Job
	maxAttempts int
	backoff     time.Duration
}

func NewWorker(
	repo domain.Repository,
	vault TokenSource,
	gateway calendar.Gateway,
	dispatcher *audit.Dispatcher,
	locks *lock.Keyed,
	clk clock.Clock,
) *Worker {
	return &Worker{
		repo:        repo,
		vault:       vault,
		gateway:     gateway,
		audit:       dispatcher,
		locks:       locks,
		clock:       clk,
		queue:       make(chan Job, 256),
		maxAttempts: 4,
		backoff:     2 * time.Second,
	}
}

func (w *Worker) Start() {
	go w.run()
}

func (w *Worker) run() {
	for job := range w.queue {
		w.Sync(context.Background(), job)
	}
}

// Enqueue hands a job to the background worker. A full queue is dropped
// with a log line; the reconciler re-drives stuck bookings and open gaps.
func (w *Worker) Enqueue(job Job) {
	select {
	case w.queue <- job:
	default:
		log.Printf("calendar sync queue full, dropping job for booking %d", job.BookingID)
	}
}

func (w *Worker) enqueueAfter(job Job, d time.Duration) {
	if d <= 0 {
		w.Enqueue(job)
		return
	}
	time.AfterFunc(d, func() { w.Enqueue(job) })
}

// Sync performs one synchronization attempt for the job. Terminal
// outcomes (success, degradation to local-only) are handled here; only a
// transient failure with attempts left schedules a follow-up.
func (w *Worker) Sync(ctx context.Context, job Job) {
	b, err := w.repo.GetBookingByID(ctx, job.BookingID)
	if err != nil {
		log.Printf("calendar sync: booking %d not found: %v", job.BookingID, err)
		return
	}

	switch job.Action {
	case ActionDelete:
		w.syncDelete(ctx, job, b)
	default:
		w.syncUpsert(ctx, job, b)
	}
}

// ------------------------------
// Create / Update
// ------------------------------

func (w *Worker) syncUpsert(ctx context.Context, job Job, b *models.Booking) {
	st := domain.Status(b.Status)

	// superseded or cancelled meanwhile: nothing to push
	if st == domain.StatusCancelled || st == domain.StatusRescheduled {
		w.resolveGap(ctx, job)
		return
	}

	if job.Action == ActionCreate && b.ExternalEventID != "" {
		// a previous attempt already created the event
		w.confirmIfPending(ctx, b)
		w.resolveGap(ctx, job)
		return
	}

	cred, err := w.repo.GetCredential(ctx, job.OwnerType, job.OwnerID)
	if err != nil || !domain.CredentialLive(cred) {
		// the owner disconnected its calendar meanwhile; the booking
		// stays valid, local-only
		w.confirmIfPending(ctx, b)
		w.resolveGap(ctx, job)
		return
	}

	token, err := w.vault.AccessToken(ctx, cred)
	if err != nil {
		w.degrade(ctx, job, b, models.SyncGapAuthExpired, err)
		return
	}

	ev := w.eventForBooking(ctx, b)

	if job.Action == ActionUpdate && b.ExternalEventID != "" {
		err = w.gateway.UpdateEvent(ctx, cred.CalendarID, token, b.ExternalEventID, ev)
	} else {
		var eventID string
		eventID, err = w.gateway.CreateEvent(ctx, cred.CalendarID, token, ev)
		if err == nil {
			b.ExternalEventID = eventID
		}
	}

	if err != nil {
		w.classifyAndHandle(ctx, job, b, err)
		return
	}

	w.finishUpsert(ctx, job, b)
}

// finishUpsert persists the provider result. It re-checks the booking
// under the owner lock: cancel and reschedule load-and-save the same row
// inside that lock, so a booking that went terminal while the provider
// call was in flight keeps its status and the event just pushed for it
// is driven back down instead of resurrecting the slot.
func (w *Worker) finishUpsert(ctx context.Context, job Job, b *models.Booking) {
	key := domain.OwnerKey(job.OwnerType, job.OwnerID)
	w.locks.Lock(key)
	defer w.locks.Unlock(key)

	cur, err := w.repo.GetBookingByID(ctx, b.ID)
	if err != nil {
		log.Printf("calendar sync: re-reading booking %d failed: %v", b.ID, err)
		return
	}

	if !domain.Occupies(domain.Status(cur.Status)) {
		// went terminal mid-call; the pushed event is stray
		w.resolveGap(ctx, job)
		if b.ExternalEventID != "" {
			if err := w.repo.SetBookingExternalEvent(ctx, b.ID, b.ExternalEventID); err != nil {
				log.Printf("calendar sync: persisting booking %d failed: %v", b.ID, err)
				return
			}
			w.Enqueue(Job{
				BookingID: b.ID,
				Action:    ActionDelete,
				OwnerType: job.OwnerType,
				OwnerID:   job.OwnerID,
			})
		}
		return
	}

	if b.ExternalEventID != cur.ExternalEventID {
		if err := w.repo.SetBookingExternalEvent(ctx, b.ID, b.ExternalEventID); err != nil {
			log.Printf("calendar sync: persisting booking %d failed: %v", b.ID, err)
			return
		}
	}
	confirmed := w.confirmIfPending(ctx, cur)
	w.resolveGap(ctx, job)

	if confirmed {
		w.audit.Dispatch(audit.Event{
			WorkshopID: b.WorkshopID,
			Action:     "booking_confirmed",
			Entity:     "booking",
			EntityID:   &b.ID,
		})
	}
}

// ------------------------------
// Delete (best-effort)
// ------------------------------

func (w *Worker) syncDelete(ctx context.Context, job Job, b *models.Booking) {
	if b.ExternalEventID == "" {
		w.resolveGap(ctx, job)
		return
	}

	cred, err := w.repo.GetCredential(ctx, job.OwnerType, job.OwnerID)
	if err != nil || !domain.CredentialLive(cred) {
		// no credential to delete with; the stray event is cosmetic
		w.recordGap(ctx, job, b, models.SyncGapCalendarDisconnect, nil)
		return
	}

	token, err := w.vault.AccessToken(ctx, cred)
	if err != nil {
		w.degrade(ctx, job, b, models.SyncGapAuthExpired, err)
		return
	}

	if err := w.gateway.DeleteEvent(ctx, cred.CalendarID, token, b.ExternalEventID); err != nil {
		w.classifyAndHandle(ctx, job, b, err)
		return
	}

	if err := w.repo.SetBookingExternalEvent(ctx, b.ID, ""); err != nil {
		log.Printf("calendar sync: persisting booking %d failed: %v", b.ID, err)
		return
	}
	w.resolveGap(ctx, job)
}

// ------------------------------
// Failure handling
// ------------------------------

func (w *Worker) classifyAndHandle(ctx context.Context, job Job, b *models.Booking, err error) {
	switch {
	case calendar.IsTransient(err):
		if job.Attempt+1 >= w.maxAttempts {
			w.degrade(ctx, job, b, models.SyncGapRetriesExhausted, err)
			return
		}
		job.Attempt++
		delay := w.backoff * time.Duration(job.Attempt)
		log.Printf("calendar sync attempt %d for booking %d failed, retrying in %s: %v",
			job.Attempt, b.ID, delay, err)
		w.enqueueAfter(job, delay)
	case calendar.IsAuth(err):
		w.degrade(ctx, job, b, models.SyncGapAuthExpired, err)
	default:
		w.degrade(ctx, job, b, models.SyncGapProviderPermanent, err)
	}
}

// degrade confirms the booking local-only (the appointment is never lost
// because of the provider) and records the gap for the operator.
func (w *Worker) degrade(ctx context.Context, job Job, b *models.Booking, reason string, cause error) {
	w.confirmIfPending(ctx, b)
	w.recordGap(ctx, job, b, reason, cause)

	log.Printf("calendar sync degraded for booking %d (%s): %v", b.ID, reason, cause)
	w.audit.Dispatch(audit.Event{
		WorkshopID: b.WorkshopID,
		Action:     "calendar_sync_degraded",
		Entity:     "booking",
		EntityID:   &b.ID,
		Metadata:   map[string]string{"reason": reason},
	})
}

// confirmIfPending uses the guarded repository update so a concurrent
// cancel can never be flipped back to confirmed.
func (w *Worker) confirmIfPending(ctx context.Context, b *models.Booking) bool {
	if domain.Status(b.Status) != domain.StatusPending {
		return false
	}
	ok, err := w.repo.ConfirmBookingIfPending(ctx, b.ID, w.clock.Now())
	if err != nil {
		log.Printf("calendar sync: confirming booking %d failed: %v", b.ID, err)
		return false
	}
	if ok {
		b.Status = string(domain.StatusConfirmed)
	}
	return ok
}

func (w *Worker) recordGap(ctx context.Context, job Job, b *models.Booking, reason string, cause error) {
	if job.GapID != nil {
		// the gap this job re-drives stays open for the next sweep
		return
	}

	detail := ""
	if cause != nil {
		detail = cause.Error()
		if len(detail) > 255 {
			detail = detail[:255]
		}
	}

	gap := &models.SyncGap{
		BookingID:  b.ID,
		WorkshopID: b.WorkshopID,
		OwnerType:  job.OwnerType,
		OwnerID:    job.OwnerID,
		Action:     string(job.Action),
		Reason:     reason,
		Detail:     detail,
	}
	if err := w.repo.CreateSyncGap(ctx, gap); err != nil {
		log.Printf("calendar sync: recording gap for booking %d failed: %v", b.ID, err)
	}
}

func (w *Worker) resolveGap(ctx context.Context, job Job) {
	if job.GapID == nil {
		return
	}
	if err := w.repo.ResolveSyncGap(ctx, *job.GapID, w.clock.Now()); err != nil {
		log.Printf("calendar sync: resolving gap %d failed: %v", *job.GapID, err)
	}
}

// ------------------------------
// Event payload
// ------------------------------

var serviceLabels = map[string]string{
	"tire_change":  "Reifenwechsel",
	"wheel_change": "Radwechsel",
	"tire_storage": "Reifeneinlagerung",
	"balancing":    "Auswuchten",
}

func (w *Worker) eventForBooking(ctx context.Context, b *models.Booking) calendar.Event {
	title := "Werkstatttermin"
	description := fmt.Sprintf("Buchung %s", b.Reference)

	if tr, err := w.repo.GetTireRequest(ctx, b.TireRequestID); err == nil {
		label := serviceLabels[tr.ServiceType]
		if label == "" {
			label = tr.ServiceType
		}
		title = fmt.Sprintf("%s: %s", label, tr.CustomerName)
		if tr.Vehicle != "" {
			description += "\nFahrzeug: " + tr.Vehicle
		}
	}

	return calendar.Event{
		Title:       title,
		Description: description,
		Start:       b.AppointmentStart,
		End:         b.AppointmentEnd,
	}
}
