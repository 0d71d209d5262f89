package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/Zdenek156/bereifung24-scheduling/internal/calendar"
	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/middleware"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

// GCalHandler runs the operator-facing Google Calendar connect flow.
// Connect hands out the consent URL; Callback exchanges the code and
// stores the credential for the owner carried in the state parameter.
type GCalHandler struct {
	repo    domain.Repository
	conf    *oauth2.Config
	gateway calendar.Gateway
}

func NewGCalHandler(repo domain.Repository, conf *oauth2.Config, gateway calendar.Gateway) *GCalHandler {
	return &GCalHandler{
		repo:    repo,
		conf:    conf,
		gateway: gateway,
	}
}

// GET /api/gcal/connect?employeeId=3
func (h *GCalHandler) Connect(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	ownerType, ownerID := models.OwnerTypeWorkshop, workshopID
	if e := c.Query("employeeId"); e != "" {
		id, err := strconv.ParseUint(e, 10, 32)
		if err != nil {
			httperr.BadRequest(c, "invalid_employee_id", "Ungültige Mitarbeiter-ID.")
			return
		}
		if _, err := h.repo.GetEmployee(c.Request.Context(), workshopID, uint(id)); err != nil {
			httperr.NotFound(c, "employee_not_found", "Mitarbeiter nicht gefunden.")
			return
		}
		ownerType, ownerID = models.OwnerTypeEmployee, uint(id)
	}

	// state round-trips the owner through the provider redirect
	state := domain.OwnerKey(ownerType, ownerID)
	url := h.conf.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
	)

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GET /api/gcal/callback?code=...&state=workshop:1
func (h *GCalHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		httperr.BadRequest(c, "missing_params", "Code und State erforderlich.")
		return
	}

	ownerType, ownerID, err := domain.SplitOwnerKey(state)
	if err != nil {
		httperr.BadRequest(c, "invalid_state", "Ungültiger State-Parameter.")
		return
	}

	tok, err := h.conf.Exchange(c.Request.Context(), code)
	if err != nil {
		httperr.BadRequest(c, "exchange_failed", "Autorisierung fehlgeschlagen.")
		return
	}

	calendarID, err := h.gateway.PrimaryCalendarID(c.Request.Context(), tok.AccessToken)
	if err != nil {
		calendarID = "primary"
	}

	cred, err := h.repo.GetCredential(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			httperr.Internal(c, "credential_lookup_failed", "Zugangsdaten konnten nicht geladen werden.")
			return
		}
		cred = &models.CalendarCredential{
			OwnerType: ownerType,
			OwnerID:   ownerID,
		}
	}

	cred.CalendarID = calendarID
	cred.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		cred.ExpiresAt = tok.Expiry
	} else {
		cred.ExpiresAt = time.Now().Add(time.Hour)
	}

	if err := h.repo.SaveCredential(c.Request.Context(), cred); err != nil {
		httperr.Internal(c, "credential_save_failed", "Zugangsdaten konnten nicht gespeichert werden.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "connected",
		"owner":       state,
		"calendar_id": calendarID,
	})
}
