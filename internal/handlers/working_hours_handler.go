package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/middleware"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

type WorkingHoursHandler struct {
	repo domain.Repository
}

func NewWorkingHoursHandler(repo domain.Repository) *WorkingHoursHandler {
	return &WorkingHoursHandler{repo: repo}
}

type WorkingDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Open       bool   `json:"open"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required"`
}

// schedule owner from the request: the workshop itself, or one of its
// employees when ?employeeId is given
func (h *WorkingHoursHandler) resolveOwner(c *gin.Context) (string, uint, bool) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	e := c.Query("employeeId")
	if e == "" {
		return models.OwnerTypeWorkshop, workshopID, true
	}

	id, err := strconv.ParseUint(e, 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_employee_id", "Ungültige Mitarbeiter-ID.")
		return "", 0, false
	}

	if _, err := h.repo.GetEmployee(c.Request.Context(), workshopID, uint(id)); err != nil {
		httperr.NotFound(c, "employee_not_found", "Mitarbeiter nicht gefunden.")
		return "", 0, false
	}

	return models.OwnerTypeEmployee, uint(id), true
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	ownerType, ownerID, ok := h.resolveOwner(c)
	if !ok {
		return
	}

	hours, err := h.repo.ListWorkingHours(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		httperr.Internal(c, "failed_to_get_working_hours", "Öffnungszeiten konnten nicht geladen werden.")
		return
	}

	c.JSON(http.StatusOK, hours)
}

func (h *WorkingHoursHandler) Update(c *gin.Context) {
	ownerType, ownerID, ok := h.resolveOwner(c)
	if !ok {
		return
	}

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Ungültige Anfrage.")
		return
	}

	var toCreate []models.WorkingHours
	for _, d := range req.Days {
		wh := models.WorkingHours{
			OwnerType:  ownerType,
			OwnerID:    ownerID,
			Weekday:    d.Weekday,
			Open:       d.Open,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
			BreakStart: d.BreakStart,
			BreakEnd:   d.BreakEnd,
		}
		if err := domain.ValidateWorkingDay(&wh); err != nil {
			httperr.BadRequest(c, httperr.BusinessCode(err), "Ungültige Öffnungszeiten.")
			return
		}
		toCreate = append(toCreate, wh)
	}

	if err := h.repo.ReplaceWorkingHours(c.Request.Context(), ownerType, ownerID, toCreate); err != nil {
		httperr.Internal(c, "failed_to_save_working_hours", "Öffnungszeiten konnten nicht gespeichert werden.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
