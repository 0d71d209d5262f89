package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/Zdenek156/bereifung24-scheduling/internal/audit"
	"github.com/Zdenek156/bereifung24-scheduling/internal/cache"
	"github.com/Zdenek156/bereifung24-scheduling/internal/calendar"
	"github.com/Zdenek156/bereifung24-scheduling/internal/calsync"
	"github.com/Zdenek156/bereifung24-scheduling/internal/clock"
	"github.com/Zdenek156/bereifung24-scheduling/internal/config"
	"github.com/Zdenek156/bereifung24-scheduling/internal/handlers"
	infraRepo "github.com/Zdenek156/bereifung24-scheduling/internal/infra/repository"
	"github.com/Zdenek156/bereifung24-scheduling/internal/lock"
	"github.com/Zdenek156/bereifung24-scheduling/internal/middleware"
	"github.com/Zdenek156/bereifung24-scheduling/internal/timezone"
	ucBooking "github.com/Zdenek156/bereifung24-scheduling/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	clk := clock.System{}
	locks := lock.NewKeyed()

	oauthConf := calendar.OAuthConfig(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	gateway := calendar.NewGoogleGateway(timezone.DefaultTimezone)
	vault := calendar.NewTokenVault(bookingRepo, oauthConf, clk)

	syncWorker := calsync.NewWorker(bookingRepo, vault, gateway, auditDispatcher, locks, clk)
	syncWorker.Start()

	reconciler := calsync.NewReconciler(bookingRepo, syncWorker, vault, clk)
	reconciler.Start()

	slotCache := cache.NewAvailability(rdb, 60*time.Second)

	// ======================================================
	// 🧠 USE CASES — BOOKINGS
	// ======================================================
	proposeSlotsUC := ucBooking.NewProposeSlots(
		bookingRepo,
		slotCache,
		clk,
	)

	createBookingUC := ucBooking.NewCreateBooking(
		bookingRepo,
		locks,
		syncWorker,
		auditDispatcher,
		slotCache,
		clk,
	)

	cancelBookingUC := ucBooking.NewCancelBooking(
		bookingRepo,
		locks,
		syncWorker,
		auditDispatcher,
		slotCache,
		clk,
	)

	rescheduleBookingUC := ucBooking.NewRescheduleBooking(
		bookingRepo,
		locks,
		syncWorker,
		auditDispatcher,
		slotCache,
		clk,
	)

	listBookingsByDateUC := ucBooking.NewListBookingsByDate(
		bookingRepo,
	)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	availabilityHandler := handlers.NewAvailabilityHandler(proposeSlotsUC)

	bookingHandler := handlers.NewBookingHandler(
		bookingRepo,
		createBookingUC,
		cancelBookingUC,
		rescheduleBookingUC,
		listBookingsByDateUC,
	)

	workingHoursHandler := handlers.NewWorkingHoursHandler(bookingRepo)
	gcalHandler := handlers.NewGCalHandler(bookingRepo, oauthConf, gateway)
	syncGapsHandler := handlers.NewSyncGapsHandler(bookingRepo, syncWorker)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/workshops/:id/availability", availabilityHandler.Get)
		}

		// the provider redirects here without a bearer token; the
		// state parameter carries the owner key from Connect
		api.GET("/gcal/callback", gcalHandler.Callback)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.POST("/bookings", bookingHandler.Create)

			secured.GET("/me/bookings", bookingHandler.ListByDate)
			secured.PATCH("/me/bookings/:id/cancel", bookingHandler.Cancel)
			secured.PATCH("/me/bookings/:id/reschedule", bookingHandler.Reschedule)

			secured.GET("/me/working-hours", workingHoursHandler.Get)
			secured.PUT("/me/working-hours", workingHoursHandler.Update)

			secured.GET("/gcal/connect", gcalHandler.Connect)

			secured.GET("/me/sync-gaps", syncGapsHandler.List)
			secured.POST("/me/sync-gaps/:id/retry", syncGapsHandler.Retry)
		}
	}
}
