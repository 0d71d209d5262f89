package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/middleware"
	usecase "github.com/Zdenek156/bereifung24-scheduling/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	repo       domain.Repository
	create     *usecase.CreateBooking
	cancel     *usecase.CancelBooking
	reschedule *usecase.RescheduleBooking
	list       *usecase.ListBookingsByDate
}

func NewBookingHandler(
	repo domain.Repository,
	create *usecase.CreateBooking,
	cancel *usecase.CancelBooking,
	reschedule *usecase.RescheduleBooking,
	list *usecase.ListBookingsByDate,
) *BookingHandler {
	return &BookingHandler{
		repo:       repo,
		create:     create,
		cancel:     cancel,
		reschedule: reschedule,
		list:       list,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	OfferID         uint   `json:"offer_id" binding:"required"`
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	EmployeeID      *uint  `json:"employee_id"`
	Notes           string `json:"notes"`
}

type RescheduleBookingRequest struct {
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
	EmployeeID      *uint  `json:"employee_id"`
}

// ======================================================
// HELPERS
// ======================================================

// maps use-case business codes onto the HTTP surface; unknown errors
// stay a 500 so callers never see internal detail
func writeBookingError(c *gin.Context, err error) {
	switch code := httperr.BusinessCode(err); code {
	case "slot_unavailable":
		httperr.Conflict(c, code, "Termin ist nicht mehr verfügbar.")
	case "booking_not_found":
		httperr.NotFound(c, code, "Buchung nicht gefunden.")
	case "workshop_not_found":
		httperr.NotFound(c, code, "Werkstatt nicht gefunden.")
	case "offer_not_found":
		httperr.NotFound(c, code, "Angebot nicht gefunden.")
	case "employee_not_found":
		httperr.NotFound(c, code, "Mitarbeiter nicht gefunden.")
	case "offer_not_accepted":
		httperr.BadRequest(c, code, "Angebot wurde noch nicht angenommen.")
	case "outside_working_hours":
		httperr.BadRequest(c, code, "Außerhalb der Öffnungszeiten.")
	case "invalid_date_or_time", "invalid_date":
		httperr.BadRequest(c, code, "Ungültiges Datum oder ungültige Uhrzeit.")
	case "too_soon":
		httperr.BadRequest(c, code, "Termin liegt zu kurzfristig.")
	case "invalid_state":
		httperr.BadRequest(c, code, "Buchung ist in diesem Status nicht änderbar.")
	case "":
		httperr.Internal(c, "internal_error", "Interner Fehler.")
	default:
		httperr.BadRequest(c, code, "Anfrage konnte nicht verarbeitet werden.")
	}
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Ungültige Anfrage.")
		return
	}

	booking, err := h.create.Execute(c.Request.Context(), usecase.CreateBookingInput{
		WorkshopID:      workshopID,
		OfferID:         req.OfferID,
		EmployeeID:      req.EmployeeID,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(201, booking)
}

// ======================================================
// LIST
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Datum erforderlich.")
		return
	}

	shop, err := h.repo.GetWorkshopByID(c.Request.Context(), workshopID)
	if err != nil {
		httperr.NotFound(c, "workshop_not_found", "Werkstatt nicht gefunden.")
		return
	}

	date, err := parseDateInWorkshop(shop, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Ungültiges Datum.")
		return
	}

	bookings, err := h.list.Execute(c.Request.Context(), workshopID, date)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(200, bookings)
}

// ======================================================
// CANCEL
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Ungültige Buchungs-ID.")
		return
	}

	booking, err := h.cancel.Execute(c.Request.Context(), workshopID, uint(id))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(200, booking)
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *BookingHandler) Reschedule(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Ungültige Buchungs-ID.")
		return
	}

	var req RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Ungültige Anfrage.")
		return
	}

	booking, err := h.reschedule.Execute(c.Request.Context(), usecase.RescheduleBookingInput{
		WorkshopID:      workshopID,
		BookingID:       uint(id),
		EmployeeID:      req.EmployeeID,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(200, booking)
}
