package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/audit"
	"github.com/Zdenek156/bereifung24-scheduling/internal/calendar"
	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

// ------------------------------
// Fake repository
// ------------------------------

type fakeRepo struct {
	mu sync.Mutex

	workshops   map[uint]*models.Workshop
	employees   map[uint]*models.Employee
	offers      map[uint]*models.Offer
	requests    map[uint]*models.TireRequest
	hours       map[string]*models.WorkingHours // "ownerType:ownerID:weekday"
	credentials map[string]*models.CalendarCredential
	bookings    map[uint]*models.Booking
	gaps        map[uint]*models.SyncGap

	nextBookingID uint
	nextGapID     uint
}

var _ domain.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		workshops:   map[uint]*models.Workshop{},
		employees:   map[uint]*models.Employee{},
		offers:      map[uint]*models.Offer{},
		requests:    map[uint]*models.TireRequest{},
		hours:       map[string]*models.WorkingHours{},
		credentials: map[string]*models.CalendarCredential{},
		bookings:    map[uint]*models.Booking{},
		gaps:        map[uint]*models.SyncGap{},
	}
}

func (r *fakeRepo) addWorkingHours(ownerType string, ownerID uint, wh models.WorkingHours) {
	wh.OwnerType, wh.OwnerID = ownerType, ownerID
	r.hours[fmt.Sprintf("%s:%d:%d", ownerType, ownerID, wh.Weekday)] = &wh
}

func (r *fakeRepo) GetWorkshopByID(ctx context.Context, id uint) (*models.Workshop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workshops[id]
	if !ok {
		return nil, fmt.Errorf("workshop %d not found", id)
	}
	cp := *w
	return &cp, nil
}

func (r *fakeRepo) GetEmployee(ctx context.Context, workshopID, employeeID uint) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[employeeID]
	if !ok || e.WorkshopID != workshopID || !e.Active {
		return nil, fmt.Errorf("employee %d not found", employeeID)
	}
	cp := *e
	return &cp, nil
}

func (r *fakeRepo) GetOffer(ctx context.Context, offerID uint) (*models.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[offerID]
	if !ok {
		return nil, fmt.Errorf("offer %d not found", offerID)
	}
	cp := *o
	return &cp, nil
}

func (r *fakeRepo) GetTireRequest(ctx context.Context, id uint) (*models.TireRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("tire request %d not found", id)
	}
	cp := *tr
	return &cp, nil
}

func (r *fakeRepo) GetWorkingHours(ctx context.Context, ownerType string, ownerID uint, weekday int) (*models.WorkingHours, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wh, ok := r.hours[fmt.Sprintf("%s:%d:%d", ownerType, ownerID, weekday)]
	if !ok {
		return nil, fmt.Errorf("no schedule")
	}
	cp := *wh
	return &cp, nil
}

func (r *fakeRepo) ListWorkingHours(ctx context.Context, ownerType string, ownerID uint) ([]models.WorkingHours, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WorkingHours
	for _, wh := range r.hours {
		if wh.OwnerType == ownerType && wh.OwnerID == ownerID {
			out = append(out, *wh)
		}
	}
	return out, nil
}

func (r *fakeRepo) ReplaceWorkingHours(ctx context.Context, ownerType string, ownerID uint, days []models.WorkingHours) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, wh := range r.hours {
		if wh.OwnerType == ownerType && wh.OwnerID == ownerID {
			delete(r.hours, key)
		}
	}
	for _, d := range days {
		d.OwnerType, d.OwnerID = ownerType, ownerID
		cp := d
		r.hours[fmt.Sprintf("%s:%d:%d", ownerType, ownerID, d.Weekday)] = &cp
	}
	return nil
}

func (r *fakeRepo) GetCredential(ctx context.Context, ownerType string, ownerID uint) (*models.CalendarCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credentials[fmt.Sprintf("%s:%d", ownerType, ownerID)]
	if !ok {
		return nil, fmt.Errorf("credential not found")
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) SaveCredential(ctx context.Context, cred *models.CalendarCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cred
	r.credentials[fmt.Sprintf("%s:%d", cred.OwnerType, cred.OwnerID)] = &cp
	return nil
}

func (r *fakeRepo) ListExpiringCredentials(ctx context.Context, before time.Time) ([]models.CalendarCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CalendarCredential
	for _, c := range r.credentials {
		if c.ExpiresAt.Before(before) && c.RefreshToken != "" {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createBookingLocked(b)
}

// mirrors the partial unique index on (owner_key, appointment_start)
func (r *fakeRepo) createBookingLocked(b *models.Booking) error {
	for _, existing := range r.bookings {
		if existing.OwnerKey == b.OwnerKey &&
			existing.AppointmentStart.Equal(b.AppointmentStart) &&
			domain.Occupies(domain.Status(existing.Status)) {
			return httperr.ErrBusiness("slot_unavailable")
		}
	}
	r.nextBookingID++
	b.ID = r.nextBookingID
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateBooking(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; !ok {
		return fmt.Errorf("booking %d not found", b.ID)
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *fakeRepo) SetBookingExternalEvent(ctx context.Context, bookingID uint, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %d not found", bookingID)
	}
	b.ExternalEventID = eventID
	return nil
}

func (r *fakeRepo) ConfirmBookingIfPending(ctx context.Context, bookingID uint, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return false, fmt.Errorf("booking %d not found", bookingID)
	}
	if domain.Status(b.Status) != domain.StatusPending {
		return false, nil
	}
	b.Status = string(domain.StatusConfirmed)
	b.ConfirmedAt = &at
	return true, nil
}

func (r *fakeRepo) SupersedeBooking(ctx context.Context, old, replacement *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.createBookingLocked(replacement); err != nil {
		return err
	}
	old.SupersededByID = &replacement.ID
	cp := *old
	r.bookings[old.ID] = &cp
	return nil
}

func (r *fakeRepo) GetBooking(ctx context.Context, workshopID, bookingID uint) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.WorkshopID != workshopID {
		return nil, fmt.Errorf("booking %d not found", bookingID)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) GetBookingByID(ctx context.Context, bookingID uint) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, fmt.Errorf("booking %d not found", bookingID)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) ListBookingsForDay(ctx context.Context, ownerKey string, dayStart, dayEnd time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.OwnerKey != ownerKey || !domain.Occupies(domain.Status(b.Status)) {
			continue
		}
		if b.AppointmentStart.Before(dayStart) || !b.AppointmentStart.Before(dayEnd) {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeRepo) ListWorkshopBookingsForDay(ctx context.Context, workshopID uint, dayStart, dayEnd time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.WorkshopID != workshopID {
			continue
		}
		if b.AppointmentStart.Before(dayStart) || !b.AppointmentStart.Before(dayEnd) {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeRepo) ListStuckPending(ctx context.Context, olderThan time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == string(domain.StatusPending) && b.CreatedAt.Before(olderThan) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateSyncGap(ctx context.Context, gap *models.SyncGap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextGapID++
	gap.ID = r.nextGapID
	cp := *gap
	r.gaps[gap.ID] = &cp
	return nil
}

func (r *fakeRepo) ResolveSyncGap(ctx context.Context, gapID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gaps[gapID]; ok && g.ResolvedAt == nil {
		g.ResolvedAt = &at
	}
	return nil
}

func (r *fakeRepo) GetSyncGap(ctx context.Context, workshopID, gapID uint) (*models.SyncGap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gaps[gapID]
	if !ok || g.WorkshopID != workshopID {
		return nil, fmt.Errorf("gap %d not found", gapID)
	}
	cp := *g
	return &cp, nil
}

func (r *fakeRepo) ListOpenSyncGaps(ctx context.Context, workshopID uint) ([]models.SyncGap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SyncGap
	for _, g := range r.gaps {
		if g.WorkshopID == workshopID && g.ResolvedAt == nil {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAllOpenSyncGaps(ctx context.Context, limit int) ([]models.SyncGap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SyncGap
	for _, g := range r.gaps {
		if g.ResolvedAt == nil {
			out = append(out, *g)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) openGaps() []models.SyncGap {
	gaps, _ := r.ListAllOpenSyncGaps(context.Background(), 100)
	return gaps
}

// ------------------------------
// Fake calendar gateway
// ------------------------------

type fakeGateway struct {
	mu sync.Mutex

	createErr error
	updateErr error
	deleteErr error

	created []calendar.Event
	updated []string
	deleted []string

	nextID int
}

var _ calendar.Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) CreateEvent(ctx context.Context, calendarID, accessToken string, ev calendar.Event) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return "", g.createErr
	}
	g.nextID++
	g.created = append(g.created, ev)
	return fmt.Sprintf("evt-%d", g.nextID), nil
}

func (g *fakeGateway) UpdateEvent(ctx context.Context, calendarID, accessToken, eventID string, ev calendar.Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updateErr != nil {
		return g.updateErr
	}
	g.updated = append(g.updated, eventID)
	return nil
}

func (g *fakeGateway) DeleteEvent(ctx context.Context, calendarID, accessToken, eventID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, eventID)
	return nil
}

func (g *fakeGateway) PrimaryCalendarID(ctx context.Context, accessToken string) (string, error) {
	return "primary", nil
}

// ------------------------------
// Fake token vault
// ------------------------------

type fakeVault struct {
	err error
}

func (v *fakeVault) AccessToken(ctx context.Context, cred *models.CalendarCredential) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	return "token", nil
}

// ------------------------------
// No-op audit sink
// ------------------------------

type nopSink struct{}

func (nopSink) Record(ev audit.Event) error { return nil }
