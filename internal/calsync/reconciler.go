package calsync

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Zdenek156/bereifung24-scheduling/internal/clock"
	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
)

// Reconciler periodically converges local and external state: it
// re-drives open sync gaps, requeues bookings stuck in pending, and
// refreshes credentials that are about to expire.
type Reconciler struct {
	repo   domain.Repository
	worker *Worker
	vault  TokenSource
	clock  clock.Clock
	cron   *cron.Cron
}

func NewReconciler(repo domain.Repository, worker *Worker, vault TokenSource, clk clock.Clock) *Reconciler {
	return &Reconciler{
		repo:   repo,
		worker: worker,
		vault:  vault,
		clock:  clk,
	}
}

func (r *Reconciler) Start() {
	c := cron.New()
	if _, err := c.AddFunc("*/5 * * * *", r.run); err != nil {
		log.Fatalf("failed to schedule reconciler: %v", err)
	}
	c.Start()
	r.cron = c
	log.Println("calendar reconciler started")
}

func (r *Reconciler) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *Reconciler) run() {
	ctx := context.Background()
	r.RedriveGaps(ctx)
	r.RequeueStuckPending(ctx)
	r.RefreshExpiringTokens(ctx)
}

func (r *Reconciler) RedriveGaps(ctx context.Context) {
	gaps, err := r.repo.ListAllOpenSyncGaps(ctx, 50)
	if err != nil {
		log.Printf("reconciler: listing sync gaps failed: %v", err)
		return
	}

	for _, gap := range gaps {
		gapID := gap.ID
		r.worker.Enqueue(Job{
			BookingID: gap.BookingID,
			Action:    Action(gap.Action),
			OwnerType: gap.OwnerType,
			OwnerID:   gap.OwnerID,
			GapID:     &gapID,
		})
	}
}

// RequeueStuckPending picks up bookings whose first sync attempt was lost
// (process restart, dropped queue) and pushes them through again.
func (r *Reconciler) RequeueStuckPending(ctx context.Context) {
	cutoff := r.clock.Now().Add(-2 * time.Minute)

	stuck, err := r.repo.ListStuckPending(ctx, cutoff)
	if err != nil {
		log.Printf("reconciler: listing stuck bookings failed: %v", err)
		return
	}

	for _, b := range stuck {
		ownerType, ownerID, err := domain.SplitOwnerKey(b.OwnerKey)
		if err != nil {
			log.Printf("reconciler: booking %d has %v", b.ID, err)
			continue
		}
		r.worker.Enqueue(Job{
			BookingID: b.ID,
			Action:    ActionCreate,
			OwnerType: ownerType,
			OwnerID:   ownerID,
		})
	}
}

func (r *Reconciler) RefreshExpiringTokens(ctx context.Context) {
	creds, err := r.repo.ListExpiringCredentials(ctx, r.clock.Now().Add(30*time.Minute))
	if err != nil {
		log.Printf("reconciler: listing expiring credentials failed: %v", err)
		return
	}

	for i := range creds {
		if _, err := r.vault.AccessToken(ctx, &creds[i]); err != nil {
			log.Printf("reconciler: proactive refresh for %s:%d failed: %v",
				creds[i].OwnerType, creds[i].OwnerID, err)
		}
	}
}
