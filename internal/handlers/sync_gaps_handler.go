package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Zdenek156/bereifung24-scheduling/internal/calsync"
	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httpresp"
	"github.com/Zdenek156/bereifung24-scheduling/internal/middleware"
)

type SyncGapsHandler struct {
	repo   domain.Repository
	worker *calsync.Worker
}

func NewSyncGapsHandler(repo domain.Repository, worker *calsync.Worker) *SyncGapsHandler {
	return &SyncGapsHandler{
		repo:   repo,
		worker: worker,
	}
}

// GET /api/me/sync-gaps
func (h *SyncGapsHandler) List(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	gaps, err := h.repo.ListOpenSyncGaps(c.Request.Context(), workshopID)
	if err != nil {
		httperr.Internal(c, "failed_to_list_sync_gaps", "Synchronisationslücken konnten nicht geladen werden.")
		return
	}

	httpresp.List(c, gaps)
}

// POST /api/me/sync-gaps/:id/retry
func (h *SyncGapsHandler) Retry(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Ungültige ID.")
		return
	}

	gap, err := h.repo.GetSyncGap(c.Request.Context(), workshopID, uint(id))
	if err != nil {
		httperr.NotFound(c, "sync_gap_not_found", "Synchronisationslücke nicht gefunden.")
		return
	}
	if gap.ResolvedAt != nil {
		httperr.BadRequest(c, "already_resolved", "Bereits behoben.")
		return
	}

	gapID := gap.ID
	h.worker.Enqueue(calsync.Job{
		BookingID: gap.BookingID,
		Action:    calsync.Action(gap.Action),
		OwnerType: gap.OwnerType,
		OwnerID:   gap.OwnerID,
		GapID:     &gapID,
	})

	c.JSON(202, gin.H{"status": "queued"})
}
