package booking

import (
	"context"
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

type Repository interface {
	// -------- Workshop / Employee --------
	GetWorkshopByID(
		ctx context.Context,
		id uint,
	) (*models.Workshop, error)

	GetEmployee(
		ctx context.Context,
		workshopID uint,
		employeeID uint,
	) (*models.Employee, error)

	// -------- Offer / Request --------
	GetOffer(
		ctx context.Context,
		offerID uint,
	) (*models.Offer, error)

	GetTireRequest(
		ctx context.Context,
		id uint,
	) (*models.TireRequest, error)

	// -------- Working hours --------
	GetWorkingHours(
		ctx context.Context,
		ownerType string,
		ownerID uint,
		weekday int,
	) (*models.WorkingHours, error)

	ListWorkingHours(
		ctx context.Context,
		ownerType string,
		ownerID uint,
	) ([]models.WorkingHours, error)

	ReplaceWorkingHours(
		ctx context.Context,
		ownerType string,
		ownerID uint,
		days []models.WorkingHours,
	) error

	// -------- Calendar credentials --------
	GetCredential(
		ctx context.Context,
		ownerType string,
		ownerID uint,
	) (*models.CalendarCredential, error)

	SaveCredential(
		ctx context.Context,
		cred *models.CalendarCredential,
	) error

	ListExpiringCredentials(
		ctx context.Context,
		before time.Time,
	) ([]models.CalendarCredential, error)

	// -------- Booking (create / conflict) --------
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// SetBookingExternalEvent writes only the stored event id, leaving
	// every other column alone.
	SetBookingExternalEvent(
		ctx context.Context,
		bookingID uint,
		eventID string,
	) error

	// ConfirmBookingIfPending flips pending to confirmed in one guarded
	// statement and reports whether the guard matched. A booking
	// cancelled or superseded in the meantime keeps its terminal status.
	ConfirmBookingIfPending(
		ctx context.Context,
		bookingID uint,
		at time.Time,
	) (bool, error)

	// SupersedeBooking persists the replacement and links the retired
	// booking to it in one transaction.
	SupersedeBooking(
		ctx context.Context,
		old *models.Booking,
		replacement *models.Booking,
	) error

	GetBooking(
		ctx context.Context,
		workshopID uint,
		bookingID uint,
	) (*models.Booking, error)

	GetBookingByID(
		ctx context.Context,
		bookingID uint,
	) (*models.Booking, error)

	// ListBookingsForDay returns the slot-occupying bookings of one
	// schedule owner, chronological.
	ListBookingsForDay(
		ctx context.Context,
		ownerKey string,
		dayStart time.Time,
		dayEnd time.Time,
	) ([]models.Booking, error)

	ListWorkshopBookingsForDay(
		ctx context.Context,
		workshopID uint,
		dayStart time.Time,
		dayEnd time.Time,
	) ([]models.Booking, error)

	ListStuckPending(
		ctx context.Context,
		olderThan time.Time,
	) ([]models.Booking, error)

	// -------- Sync gaps --------
	CreateSyncGap(
		ctx context.Context,
		gap *models.SyncGap,
	) error

	ResolveSyncGap(
		ctx context.Context,
		gapID uint,
		at time.Time,
	) error

	GetSyncGap(
		ctx context.Context,
		workshopID uint,
		gapID uint,
	) (*models.SyncGap, error)

	ListOpenSyncGaps(
		ctx context.Context,
		workshopID uint,
	) ([]models.SyncGap, error)

	ListAllOpenSyncGaps(
		ctx context.Context,
		limit int,
	) ([]models.SyncGap, error)
}
