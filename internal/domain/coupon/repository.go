package coupon

import (
	"context"

	"github.com/google/uuid"
)

// CouponRepository defines the persistence contract for coupons.
type CouponRepository interface {
	// FindByCode retrieves a coupon by exact, case-sensitive code match.
	FindByCode(ctx context.Context, code string) (*Coupon, error)

	// FindByID retrieves a coupon by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)

	// Save persists a new coupon.
	Save(ctx context.Context, c *Coupon) error
}
