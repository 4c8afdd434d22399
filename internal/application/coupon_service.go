package application

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voyago/service-booking/internal/domain"
	bookingDomain "github.com/voyago/service-booking/internal/domain/booking"
	couponDomain "github.com/voyago/service-booking/internal/domain/coupon"
)

// CouponStatus is the outcome of a coupon validation attempt.
type CouponStatus string

const (
	// CouponStatusActive means the coupon exists and is inside its validity window.
	CouponStatusActive CouponStatus = "active"
	// CouponStatusNotFound means no coupon matches the code.
	CouponStatusNotFound CouponStatus = "not_found"
	// CouponStatusExpired means the coupon exists but now is outside its window.
	CouponStatusExpired CouponStatus = "expired"
	// CouponStatusBlank means the submitted code was empty after trimming.
	CouponStatusBlank CouponStatus = "blank"
)

// CouponResult is the outcome of a validation attempt. A lookup failure is
// never folded into this type; it is returned as a separate error so "no
// such coupon" and "try again" stay distinguishable.
type CouponResult struct {
	Status          CouponStatus `json:"status"`
	Code            string       `json:"code,omitempty"`
	DiscountPercent int          `json:"discount_percent,omitempty"`
	Message         string       `json:"message,omitempty"`
}

// Snapshot returns the discount snapshot for an active result, or nil.
func (r CouponResult) Snapshot() *bookingDomain.CouponSnapshot {
	if r.Status != CouponStatusActive {
		return nil
	}
	return &bookingDomain.CouponSnapshot{
		Code:            r.Code,
		DiscountPercent: r.DiscountPercent,
	}
}

// CouponMetrics records validation outcomes. Satisfied by *metrics.Metrics.
type CouponMetrics interface {
	CouponLookup(outcome string)
}

// CouponService is the application service for coupon validation and
// administration.
type CouponService struct {
	repo    couponDomain.CouponRepository
	metrics CouponMetrics
	logger  *zap.Logger
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo couponDomain.CouponRepository, metrics CouponMetrics, logger *zap.Logger) *CouponService {
	return &CouponService{repo: repo, metrics: metrics, logger: logger}
}

// ValidateCoupon checks a code against the store at the given instant. The
// lookup is read-only and safe to retry. A blank code is a no-op result, not
// an error. Transport failures are returned as an error, leaving any
// previously applied coupon for the caller to keep.
func (s *CouponService) ValidateCoupon(ctx context.Context, code string, now time.Time) (CouponResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return CouponResult{Status: CouponStatusBlank}, nil
	}

	c, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if domain.IsNotFound(err) {
			s.record(string(CouponStatusNotFound))
			return CouponResult{
				Status:  CouponStatusNotFound,
				Code:    code,
				Message: "coupon code not recognized",
			}, nil
		}
		s.record("lookup_failure")
		s.logger.Warn("coupon lookup failed",
			zap.String("code", code),
			zap.Error(err),
		)
		return CouponResult{}, err
	}

	if !c.IsActiveAt(now) {
		s.record(string(CouponStatusExpired))
		return CouponResult{
			Status:  CouponStatusExpired,
			Code:    c.Code(),
			Message: "coupon is not valid at this time",
		}, nil
	}

	s.record(string(CouponStatusActive))
	return CouponResult{
		Status:          CouponStatusActive,
		Code:            c.Code(),
		DiscountPercent: c.DiscountPercent(),
	}, nil
}

// CreateCouponRequest holds the data needed to create a coupon (admin).
type CreateCouponRequest struct {
	Code            string    `json:"code" binding:"required"`
	DiscountPercent int       `json:"discount_percent" binding:"min=0,max=100"`
	ValidFrom       time.Time `json:"valid_from" binding:"required"`
	ValidUntil      time.Time `json:"valid_until" binding:"required"`
}

// CouponDTO is the response representation of a coupon.
type CouponDTO struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	DiscountPercent int       `json:"discount_percent"`
	ValidFrom       time.Time `json:"valid_from"`
	ValidUntil      time.Time `json:"valid_until"`
}

// CreateCoupon creates a new coupon (admin).
func (s *CouponService) CreateCoupon(ctx context.Context, req CreateCouponRequest) (*CouponDTO, error) {
	c, err := couponDomain.NewCoupon(req.Code, req.DiscountPercent, req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return &CouponDTO{
		ID:              c.ID().String(),
		Code:            c.Code(),
		DiscountPercent: c.DiscountPercent(),
		ValidFrom:       c.ValidFrom(),
		ValidUntil:      c.ValidUntil(),
	}, nil
}

func (s *CouponService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.CouponLookup(outcome)
	}
}
