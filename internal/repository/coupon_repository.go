package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyago/service-booking/internal/domain"
	couponDomain "github.com/voyago/service-booking/internal/domain/coupon"
)

// CouponModel is the GORM model for the coupons table.
type CouponModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code            string    `gorm:"uniqueIndex;not null;size:50"`
	DiscountPercent int       `gorm:"not null"`
	ValidFrom       time.Time `gorm:"not null"`
	ValidUntil      time.Time `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CouponModel) TableName() string {
	return "coupons"
}

// GormCouponRepository is the GORM-based implementation of CouponRepository.
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository.
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByCode retrieves a coupon by exact, case-sensitive code match. A
// missing coupon and a failed lookup are reported as distinct errors so
// callers can keep "not found" and "try again" apart.
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*couponDomain.Coupon, error) {
	var model CouponModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Coupon", code)
		}
		return nil, domain.NewUnavailableError("failed to look up coupon", err)
	}
	return toDomainCoupon(&model), nil
}

// FindByID retrieves a coupon by its unique identifier.
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*couponDomain.Coupon, error) {
	var model CouponModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Coupon", id.String())
		}
		return nil, domain.NewUnavailableError("failed to look up coupon", err)
	}
	return toDomainCoupon(&model), nil
}

// Save persists a new coupon.
func (r *GormCouponRepository) Save(ctx context.Context, c *couponDomain.Coupon) error {
	model := &CouponModel{
		ID:              c.ID(),
		Code:            c.Code(),
		DiscountPercent: c.DiscountPercent(),
		ValidFrom:       c.ValidFrom(),
		ValidUntil:      c.ValidUntil(),
		CreatedAt:       c.CreatedAt(),
		UpdatedAt:       c.UpdatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return domain.NewUnavailableError("failed to save coupon", err)
	}
	return nil
}

func toDomainCoupon(m *CouponModel) *couponDomain.Coupon {
	return couponDomain.ReconstructCoupon(
		m.ID,
		m.Code,
		m.DiscountPercent,
		m.ValidFrom,
		m.ValidUntil,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
