package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

var _ domain.Repository = (*BookingGormRepository)(nil)

// --------------------------------------------------
// Workshop / Employee
// --------------------------------------------------

func (r *BookingGormRepository) GetWorkshopByID(
	ctx context.Context,
	id uint,
) (*models.Workshop, error) {

	var shop models.Workshop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *BookingGormRepository) GetEmployee(
	ctx context.Context,
	workshopID uint,
	employeeID uint,
) (*models.Employee, error) {

	var emp models.Employee
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ? AND active = true", employeeID, workshopID).
		First(&emp).Error; err != nil {
		return nil, err
	}
	return &emp, nil
}

// --------------------------------------------------
// Offer / Request
// --------------------------------------------------

func (r *BookingGormRepository) GetOffer(
	ctx context.Context,
	offerID uint,
) (*models.Offer, error) {

	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, offerID).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *BookingGormRepository) GetTireRequest(
	ctx context.Context,
	id uint,
) (*models.TireRequest, error) {

	var req models.TireRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// --------------------------------------------------
// Working hours
// --------------------------------------------------

func (r *BookingGormRepository) GetWorkingHours(
	ctx context.Context,
	ownerType string,
	ownerID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ? AND weekday = ?", ownerType, ownerID, weekday).
		First(&wh).Error; err != nil {
		return nil, err
	}
	return &wh, nil
}

func (r *BookingGormRepository) ListWorkingHours(
	ctx context.Context,
	ownerType string,
	ownerID uint,
) ([]models.WorkingHours, error) {

	var hours []models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *BookingGormRepository) ReplaceWorkingHours(
	ctx context.Context,
	ownerType string,
	ownerID uint,
	days []models.WorkingHours,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
			Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		if len(days) == 0 {
			return nil
		}
		return tx.Create(&days).Error
	})
}

// --------------------------------------------------
// Calendar credentials
// --------------------------------------------------

func (r *BookingGormRepository) GetCredential(
	ctx context.Context,
	ownerType string,
	ownerID uint,
) (*models.CalendarCredential, error) {

	var cred models.CalendarCredential
	if err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *BookingGormRepository) SaveCredential(
	ctx context.Context,
	cred *models.CalendarCredential,
) error {
	return r.db.WithContext(ctx).Save(cred).Error
}

func (r *BookingGormRepository) ListExpiringCredentials(
	ctx context.Context,
	before time.Time,
) ([]models.CalendarCredential, error) {

	var creds []models.CalendarCredential
	if err := r.db.WithContext(ctx).
		Where("expires_at < ? AND refresh_token <> ''", before).
		Find(&creds).Error; err != nil {
		return nil, err
	}
	return creds, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {

	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		// the partial unique index on (owner_key, appointment_start)
		// is the backstop under concurrent inserts
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return httperr.ErrBusiness("slot_unavailable")
		}
		return err
	}
	return nil
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookingGormRepository) SetBookingExternalEvent(
	ctx context.Context,
	bookingID uint,
	eventID string,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("external_event_id", eventID).Error
}

func (r *BookingGormRepository) ConfirmBookingIfPending(
	ctx context.Context,
	bookingID uint,
	at time.Time,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, "pending").
		Updates(map[string]interface{}{
			"status":       "confirmed",
			"confirmed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *BookingGormRepository) SupersedeBooking(
	ctx context.Context,
	old *models.Booking,
	replacement *models.Booking,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(replacement).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return httperr.ErrBusiness("slot_unavailable")
			}
			return err
		}
		old.SupersededByID = &replacement.ID
		return tx.Save(old).Error
	})
}

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	workshopID uint,
	bookingID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("TireRequest").
		Preload("Employee").
		Where("id = ? AND workshop_id = ?", bookingID, workshopID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingByID(
	ctx context.Context,
	bookingID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("TireRequest").
		Preload("Employee").
		First(&b, bookingID).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) ListBookingsForDay(
	ctx context.Context,
	ownerKey string,
	dayStart time.Time,
	dayEnd time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where(
			"owner_key = ? AND status IN ('pending', 'confirmed') AND appointment_start >= ? AND appointment_start < ?",
			ownerKey,
			dayStart,
			dayEnd,
		).
		Order("appointment_start ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListWorkshopBookingsForDay(
	ctx context.Context,
	workshopID uint,
	dayStart time.Time,
	dayEnd time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Preload("TireRequest").
		Preload("Employee").
		Where(
			"workshop_id = ? AND appointment_start >= ? AND appointment_start < ?",
			workshopID,
			dayStart,
			dayEnd,
		).
		Order("appointment_start ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListStuckPending(
	ctx context.Context,
	olderThan time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("status = 'pending' AND created_at < ?", olderThan).
		Order("created_at ASC").
		Limit(100).
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// --------------------------------------------------
// Sync gaps
// --------------------------------------------------

func (r *BookingGormRepository) CreateSyncGap(
	ctx context.Context,
	gap *models.SyncGap,
) error {
	return r.db.WithContext(ctx).Create(gap).Error
}

func (r *BookingGormRepository) ResolveSyncGap(
	ctx context.Context,
	gapID uint,
	at time.Time,
) error {
	return r.db.WithContext(ctx).
		Model(&models.SyncGap{}).
		Where("id = ? AND resolved_at IS NULL", gapID).
		Update("resolved_at", at).Error
}

func (r *BookingGormRepository) GetSyncGap(
	ctx context.Context,
	workshopID uint,
	gapID uint,
) (*models.SyncGap, error) {

	var gap models.SyncGap
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ?", gapID, workshopID).
		First(&gap).Error; err != nil {
		return nil, err
	}
	return &gap, nil
}

func (r *BookingGormRepository) ListOpenSyncGaps(
	ctx context.Context,
	workshopID uint,
) ([]models.SyncGap, error) {

	var gaps []models.SyncGap
	if err := r.db.WithContext(ctx).
		Where("workshop_id = ? AND resolved_at IS NULL", workshopID).
		Order("created_at ASC").
		Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}

func (r *BookingGormRepository) ListAllOpenSyncGaps(
	ctx context.Context,
	limit int,
) ([]models.SyncGap, error) {

	var gaps []models.SyncGap
	if err := r.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&gaps).Error; err != nil {
		return nil, err
	}
	return gaps, nil
}
