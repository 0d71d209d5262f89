package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	usecase "github.com/Zdenek156/bereifung24-scheduling/internal/usecase/booking"
)

type AvailabilityHandler struct {
	propose *usecase.ProposeSlots
}

func NewAvailabilityHandler(propose *usecase.ProposeSlots) *AvailabilityHandler {
	return &AvailabilityHandler{propose: propose}
}

// GET /api/public/workshops/:id/availability?date=YYYY-MM-DD&duration=60&employeeId=3
func (h *AvailabilityHandler) Get(c *gin.Context) {
	workshopID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_workshop_id", "Ungültige Werkstatt-ID.")
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Datum erforderlich.")
		return
	}

	duration := 0
	if d := c.Query("duration"); d != "" {
		duration, err = strconv.Atoi(d)
		if err != nil || duration < 0 {
			httperr.BadRequest(c, "invalid_duration", "Ungültige Dauer.")
			return
		}
	}

	var employeeID *uint
	if e := c.Query("employeeId"); e != "" {
		id, err := strconv.ParseUint(e, 10, 32)
		if err != nil {
			httperr.BadRequest(c, "invalid_employee_id", "Ungültige Mitarbeiter-ID.")
			return
		}
		v := uint(id)
		employeeID = &v
	}

	slots, err := h.propose.Execute(c.Request.Context(), usecase.ProposeSlotsInput{
		WorkshopID:      uint(workshopID),
		EmployeeID:      employeeID,
		Date:            dateStr,
		DurationMinutes: duration,
	})
	if err != nil {
		switch code := httperr.BusinessCode(err); code {
		case "workshop_not_found":
			httperr.NotFound(c, code, "Werkstatt nicht gefunden.")
		case "employee_not_found":
			httperr.NotFound(c, code, "Mitarbeiter nicht gefunden.")
		case "invalid_date":
			httperr.BadRequest(c, code, "Ungültiges Datum.")
		default:
			httperr.Internal(c, "availability_failed", "Verfügbarkeit konnte nicht berechnet werden.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}
