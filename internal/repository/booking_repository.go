package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyago/service-booking/internal/domain"
	bookingDomain "github.com/voyago/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table. Exactly one of the
// four item foreign keys is set, selected by ItemKind; the database enforces
// the same rule with a CHECK constraint.
type BookingModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference       string          `gorm:"uniqueIndex;not null;size:20"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	ItemKind        string          `gorm:"not null;size:20;index"`
	TourID          *uuid.UUID      `gorm:"type:uuid;index"`
	AccommodationID *uuid.UUID      `gorm:"type:uuid;index"`
	EventID         *uuid.UUID      `gorm:"type:uuid;index"`
	VehicleID       *uuid.UUID      `gorm:"type:uuid;index"`
	ItemName        string          `gorm:"not null;size:200"`
	StartDate       time.Time       `gorm:"not null"`
	EndDate         time.Time       `gorm:"not null"`
	Guests          int             `gorm:"not null"`
	Contact         json.RawMessage `gorm:"type:jsonb;not null"`
	SpecialRequest  string          `gorm:"size:1000"`
	PaymentMethod   string          `gorm:"not null;size:30"`
	SubtotalCents   int64           `gorm:"not null"`
	DiscountCents   int64           `gorm:"not null;default:0"`
	TotalCents      int64           `gorm:"not null"`
	Currency        string          `gorm:"not null;size:3;default:'USD'"`
	CouponCode      *string         `gorm:"size:50"`
	CouponPercent   *int            `gorm:""`
	Status          string          `gorm:"not null;size:30;index"`
	CompletedAt     *time.Time      `gorm:""`
	CancelledAt     *time.Time      `gorm:""`
	CancelNote      string          `gorm:"size:500"`
	Version         int64           `gorm:"not null;default:1"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, domain.NewUnavailableError("failed to find booking by ID", err)
	}
	return toDomainBooking(&model)
}

// FindByReference retrieves a booking by its human-readable reference.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, domain.NewUnavailableError("failed to find booking by reference", err)
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves bookings for a specific user with pagination.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return domain.NewUnavailableError("failed to save booking", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Optimistic locking: only update if the version matches (current version - 1 since IncrementVersion was called)
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"completed_at": model.CompletedAt,
			"cancelled_at": model.CancelledAt,
			"cancel_note":  model.CancelNote,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return domain.NewUnavailableError("failed to update booking", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	contactJSON, err := json.Marshal(bk.Details().Contact)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contact details: %w", err)
	}

	model := &BookingModel{
		ID:             bk.ID(),
		Reference:      bk.Reference(),
		UserID:         bk.UserID(),
		ItemKind:       string(bk.Item().Kind),
		ItemName:       bk.ItemName(),
		StartDate:      bk.Details().Stay.Start,
		EndDate:        bk.Details().Stay.End,
		Guests:         bk.Details().Guests,
		Contact:        contactJSON,
		SpecialRequest: bk.Details().SpecialRequest,
		PaymentMethod:  string(bk.Details().Payment),
		SubtotalCents:  bk.Quote().SubtotalCents,
		DiscountCents:  bk.Quote().DiscountCents,
		TotalCents:     bk.Quote().TotalCents,
		Currency:       bk.Quote().Currency,
		Status:         string(bk.Status()),
		CompletedAt:    bk.CompletedAt(),
		CancelledAt:    bk.CancelledAt(),
		CancelNote:     bk.CancelNote(),
		Version:        bk.Version(),
		CreatedAt:      bk.CreatedAt(),
		UpdatedAt:      bk.UpdatedAt(),
	}

	if c := bk.Quote().Coupon; c != nil {
		code := c.Code
		pct := c.DiscountPercent
		model.CouponCode = &code
		model.CouponPercent = &pct
	}

	itemID := bk.Item().ID
	switch bk.Item().Kind {
	case bookingDomain.KindTour:
		model.TourID = &itemID
	case bookingDomain.KindAccommodation:
		model.AccommodationID = &itemID
	case bookingDomain.KindEvent:
		model.EventID = &itemID
	case bookingDomain.KindVehicle:
		model.VehicleID = &itemID
	default:
		return nil, fmt.Errorf("unknown item kind: %s", bk.Item().Kind)
	}

	return model, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var contact bookingDomain.ContactDetails
	if err := json.Unmarshal(m.Contact, &contact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact details: %w", err)
	}

	kind := bookingDomain.ItemKind(m.ItemKind)
	itemID, err := itemIDForKind(m, kind)
	if err != nil {
		return nil, err
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	var snapshot *bookingDomain.CouponSnapshot
	if m.CouponCode != nil && m.CouponPercent != nil {
		snapshot = &bookingDomain.CouponSnapshot{
			Code:            *m.CouponCode,
			DiscountPercent: *m.CouponPercent,
		}
	}

	details := bookingDomain.Details{
		Stay:           bookingDomain.StayPeriod{Start: m.StartDate, End: m.EndDate},
		Guests:         m.Guests,
		Contact:        contact,
		SpecialRequest: m.SpecialRequest,
		Payment:        bookingDomain.PaymentMethod(m.PaymentMethod),
		TermsAccepted:  true,
	}

	nights := 1
	if kind.PricedPerNight() {
		if n, err := bookingDomain.NightsBetween(m.StartDate, m.EndDate); err == nil {
			nights = n
		}
	}

	quote := bookingDomain.Quote{
		BasePriceCents: basePriceFromSubtotal(m.SubtotalCents, nights, m.Guests),
		Nights:         nights,
		Guests:         m.Guests,
		SubtotalCents:  m.SubtotalCents,
		DiscountCents:  m.DiscountCents,
		TotalCents:     m.TotalCents,
		Currency:       m.Currency,
		Coupon:         snapshot,
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.Reference,
		m.UserID,
		bookingDomain.ItemRef{Kind: kind, ID: itemID},
		m.ItemName,
		details,
		quote,
		status,
		m.CompletedAt,
		m.CancelledAt,
		m.CancelNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func itemIDForKind(m *BookingModel, kind bookingDomain.ItemKind) (uuid.UUID, error) {
	var id *uuid.UUID
	switch kind {
	case bookingDomain.KindTour:
		id = m.TourID
	case bookingDomain.KindAccommodation:
		id = m.AccommodationID
	case bookingDomain.KindEvent:
		id = m.EventID
	case bookingDomain.KindVehicle:
		id = m.VehicleID
	default:
		return uuid.Nil, fmt.Errorf("unknown item kind: %s", m.ItemKind)
	}
	if id == nil {
		return uuid.Nil, fmt.Errorf("booking %s has no item reference for kind %s", m.ID, kind)
	}
	return *id, nil
}

func basePriceFromSubtotal(subtotal int64, nights, guests int) int64 {
	divisor := int64(nights) * int64(guests)
	if divisor <= 0 {
		return subtotal
	}
	return subtotal / divisor
}
