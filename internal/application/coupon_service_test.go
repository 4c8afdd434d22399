package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/service-booking/internal/domain"
	couponDomain "github.com/voyago/service-booking/internal/domain/coupon"
)

func mustCoupon(t *testing.T, code string, percent int, from, until time.Time) *couponDomain.Coupon {
	t.Helper()
	c, err := couponDomain.NewCoupon(code, percent, from, until)
	require.NoError(t, err)
	return c
}

func TestCouponService_ValidateCoupon(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeCouponRepo()
	repo.add(mustCoupon(t, "SUMMER10", 10, now.AddDate(0, 0, -14), now.AddDate(0, 0, 14)))
	repo.add(mustCoupon(t, "SPRING20", 20, now.AddDate(0, -3, 0), now.AddDate(0, -2, 0)))

	metrics := newFakeMetrics()
	svc := NewCouponService(repo, metrics, zap.NewNop())

	t.Run("active coupon", func(t *testing.T) {
		result, err := svc.ValidateCoupon(context.Background(), "SUMMER10", now)
		require.NoError(t, err)
		assert.Equal(t, CouponStatusActive, result.Status)
		assert.Equal(t, "SUMMER10", result.Code)
		assert.Equal(t, 10, result.DiscountPercent)

		snap := result.Snapshot()
		require.NotNil(t, snap)
		assert.Equal(t, 10, snap.DiscountPercent)
	})

	t.Run("expired coupon", func(t *testing.T) {
		result, err := svc.ValidateCoupon(context.Background(), "SPRING20", now)
		require.NoError(t, err)
		assert.Equal(t, CouponStatusExpired, result.Status)
		assert.Nil(t, result.Snapshot())
	})

	t.Run("unknown coupon is a result, not an error", func(t *testing.T) {
		result, err := svc.ValidateCoupon(context.Background(), "NOPE", now)
		require.NoError(t, err)
		assert.Equal(t, CouponStatusNotFound, result.Status)
		assert.Nil(t, result.Snapshot())
	})

	t.Run("blank code is a no-op", func(t *testing.T) {
		result, err := svc.ValidateCoupon(context.Background(), "   ", now)
		require.NoError(t, err)
		assert.Equal(t, CouponStatusBlank, result.Status)
	})

	t.Run("codes are case-sensitive", func(t *testing.T) {
		result, err := svc.ValidateCoupon(context.Background(), "summer10", now)
		require.NoError(t, err)
		assert.Equal(t, CouponStatusNotFound, result.Status)
	})

	t.Run("lookup failure is an error", func(t *testing.T) {
		repo.findErr = domain.NewUnavailableError("store down", nil)
		defer func() { repo.findErr = nil }()

		_, err := svc.ValidateCoupon(context.Background(), "SUMMER10", now)
		require.Error(t, err)
		assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))
		assert.Equal(t, 1, metrics.couponLookups["lookup_failure"])
	})
}

func TestCouponService_ValidateCoupon_WindowBoundaries(t *testing.T) {
	from := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)

	repo := newFakeCouponRepo()
	repo.add(mustCoupon(t, "EDGE", 15, from, until))
	svc := NewCouponService(repo, newFakeMetrics(), zap.NewNop())

	tests := []struct {
		name string
		at   time.Time
		want CouponStatus
	}{
		{"just before window", from.Add(-time.Second), CouponStatusExpired},
		{"window start", from, CouponStatusActive},
		{"window end", until, CouponStatusActive},
		{"just after window", until.Add(time.Second), CouponStatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.ValidateCoupon(context.Background(), "EDGE", tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Status)
		})
	}
}

func TestCouponService_CreateCoupon(t *testing.T) {
	repo := newFakeCouponRepo()
	svc := NewCouponService(repo, newFakeMetrics(), zap.NewNop())

	from := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 1, 0)

	dto, err := svc.CreateCoupon(context.Background(), CreateCouponRequest{
		Code:            "JULY25",
		DiscountPercent: 25,
		ValidFrom:       from,
		ValidUntil:      until,
	})
	require.NoError(t, err)
	assert.Equal(t, "JULY25", dto.Code)
	assert.Equal(t, 25, dto.DiscountPercent)

	// Duplicate codes are rejected by the store.
	_, err = svc.CreateCoupon(context.Background(), CreateCouponRequest{
		Code:            "JULY25",
		DiscountPercent: 25,
		ValidFrom:       from,
		ValidUntil:      until,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	// Invalid percentage never reaches the store.
	_, err = svc.CreateCoupon(context.Background(), CreateCouponRequest{
		Code:            "TOOBIG",
		DiscountPercent: 150,
		ValidFrom:       from,
		ValidUntil:      until,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}
