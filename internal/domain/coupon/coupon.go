package coupon

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/voyago/service-booking/internal/domain"
	"github.com/voyago/service-booking/internal/domain/booking"
)

// Coupon is a percentage discount valid inside a time window. Codes are
// matched exactly as stored, case-sensitive.
type Coupon struct {
	id              uuid.UUID
	code            string
	discountPercent int
	validFrom       time.Time
	validUntil      time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

// NewCoupon creates a new Coupon after checking its invariants.
func NewCoupon(code string, discountPercent int, validFrom, validUntil time.Time) (*Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.NewValidationError("coupon code is required")
	}
	if discountPercent < 0 || discountPercent > 100 {
		return nil, domain.NewValidationError("discount percentage must be between 0 and 100")
	}
	if validFrom.IsZero() || validUntil.IsZero() {
		return nil, domain.NewValidationError("validity window is required")
	}
	if validUntil.Before(validFrom) {
		return nil, domain.NewValidationError("valid_until must not be before valid_from")
	}

	now := time.Now().UTC()
	return &Coupon{
		id:              uuid.New(),
		code:            code,
		discountPercent: discountPercent,
		validFrom:       validFrom.UTC(),
		validUntil:      validUntil.UTC(),
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructCoupon rebuilds a Coupon from persistence data (no validation).
func ReconstructCoupon(
	id uuid.UUID,
	code string,
	discountPercent int,
	validFrom, validUntil time.Time,
	createdAt, updatedAt time.Time,
) *Coupon {
	return &Coupon{
		id:              id,
		code:            code,
		discountPercent: discountPercent,
		validFrom:       validFrom,
		validUntil:      validUntil,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ID returns the coupon's unique identifier.
func (c *Coupon) ID() uuid.UUID { return c.id }

// Code returns the coupon code.
func (c *Coupon) Code() string { return c.code }

// DiscountPercent returns the discount percentage in [0, 100].
func (c *Coupon) DiscountPercent() int { return c.discountPercent }

// ValidFrom returns the start of the validity window.
func (c *Coupon) ValidFrom() time.Time { return c.validFrom }

// ValidUntil returns the end of the validity window.
func (c *Coupon) ValidUntil() time.Time { return c.validUntil }

// CreatedAt returns the creation timestamp.
func (c *Coupon) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (c *Coupon) UpdatedAt() time.Time { return c.updatedAt }

// IsActiveAt returns true if now falls inside the validity window,
// boundaries included.
func (c *Coupon) IsActiveAt(now time.Time) bool {
	return !now.Before(c.validFrom) && !now.After(c.validUntil)
}

// Snapshot returns the immutable discount snapshot that gets priced and
// persisted with a booking.
func (c *Coupon) Snapshot() booking.CouponSnapshot {
	return booking.CouponSnapshot{
		Code:            c.code,
		DiscountPercent: c.discountPercent,
	}
}
