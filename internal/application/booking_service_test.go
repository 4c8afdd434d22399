package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/service-booking/internal/auth"
	"github.com/voyago/service-booking/internal/domain"
	bookingDomain "github.com/voyago/service-booking/internal/domain/booking"
	catalogDomain "github.com/voyago/service-booking/internal/domain/catalog"
)

type bookingFixture struct {
	repo       *fakeBookingRepo
	itemRepo   *fakeItemRepo
	couponRepo *fakeCouponRepo
	dispatcher *fakeDispatcher
	metrics    *fakeMetrics
	service    *BookingService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	f := &bookingFixture{
		repo:       newFakeBookingRepo(),
		itemRepo:   newFakeItemRepo(),
		couponRepo: newFakeCouponRepo(),
		dispatcher: &fakeDispatcher{},
		metrics:    newFakeMetrics(),
	}
	log := zap.NewNop()
	coupons := NewCouponService(f.couponRepo, f.metrics, log)
	f.service = NewBookingService(
		f.repo,
		f.itemRepo,
		coupons,
		bookingDomain.NewStandardQuoteCalculator(),
		f.dispatcher,
		nil,
		f.metrics,
		log,
	)
	return f
}

func mustItem(t *testing.T, kind bookingDomain.ItemKind, priceCents int64) *catalogDomain.Item {
	t.Helper()
	item, err := catalogDomain.NewItem(kind, "Test Listing", "", "Lisbon", priceCents, domain.CurrencyUSD, 1, 10)
	require.NoError(t, err)
	return item
}

func validCreateRequest(item *catalogDomain.Item) CreateBookingRequest {
	return CreateBookingRequest{
		ItemKind:      string(item.Kind()),
		ItemID:        item.ID(),
		StartDate:     time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, time.June, 4, 0, 0, 0, 0, time.UTC),
		Guests:        2,
		Name:          "Alex Rivera",
		Email:         "alex@example.com",
		PaymentMethod: string(bookingDomain.PaymentCard),
		TermsAccepted: true,
	}
}

func TestBookingService_CreateBooking(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindAccommodation, 20000)
	f.itemRepo.add(item)
	userID := uuid.New()

	dto, err := f.service.CreateBooking(context.Background(), userID, validCreateRequest(item))
	require.NoError(t, err)

	assert.Equal(t, userID, dto.UserID)
	assert.Equal(t, "confirmed", dto.Status)
	assert.Equal(t, "Test Listing", dto.ItemName)
	assert.Equal(t, int64(120000), dto.Quote.SubtotalCents)
	assert.Equal(t, int64(120000), dto.Quote.TotalCents)

	assert.Equal(t, 1, f.repo.count())
	assert.Equal(t, 1, f.dispatcher.count())
	assert.Equal(t, 1, f.metrics.created)

	sent := f.dispatcher.sent[0]
	assert.Equal(t, dto.ID, sent.BookingID)
	assert.Equal(t, "alex@example.com", sent.Email)
}

func TestBookingService_CreateBooking_WithCoupon(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindAccommodation, 20000)
	f.itemRepo.add(item)

	now := time.Now().UTC()
	f.couponRepo.add(mustCoupon(t, "SUMMER10", 10, now.AddDate(0, 0, -1), now.AddDate(0, 0, 30)))

	req := validCreateRequest(item)
	req.CouponCode = "SUMMER10"

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(12000), dto.Quote.DiscountCents)
	assert.Equal(t, int64(108000), dto.Quote.TotalCents)
	require.NotNil(t, dto.Quote.Coupon)
	assert.Equal(t, "SUMMER10", dto.Quote.Coupon.Code)
}

func TestBookingService_CreateBooking_CouponRejectedAtSubmit(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name string
		seed func(f *bookingFixture)
		code string
	}{
		{
			"expired since applied",
			func(f *bookingFixture) {
				f.couponRepo.add(mustCoupon(t, "OLD", 10, now.AddDate(0, -2, 0), now.AddDate(0, -1, 0)))
			},
			"OLD",
		},
		{
			"unknown code",
			func(f *bookingFixture) {},
			"GHOST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			item := mustItem(t, bookingDomain.KindAccommodation, 20000)
			f.itemRepo.add(item)
			tt.seed(f)

			req := validCreateRequest(item)
			req.CouponCode = tt.code

			_, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
			require.Error(t, err)

			var de *domain.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, domain.KindValidation, de.Kind)
			assert.Equal(t, "coupon_code", de.Field)

			// Nothing was created and nobody was notified.
			assert.Equal(t, 0, f.repo.count())
			assert.Equal(t, 0, f.dispatcher.count())
		})
	}
}

func TestBookingService_CreateBooking_CouponStoreDownBlocksSubmit(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindAccommodation, 20000)
	f.itemRepo.add(item)
	f.couponRepo.findErr = domain.NewUnavailableError("store down", nil)

	req := validCreateRequest(item)
	req.CouponCode = "SUMMER10"

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))
	assert.Equal(t, 0, f.repo.count())
}

func TestBookingService_CreateBooking_ValidationStopsBeforePersistence(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindAccommodation, 20000)
	f.itemRepo.add(item)

	req := validCreateRequest(item)
	req.TermsAccepted = false

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.Error(t, err)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "terms_accepted", de.Field)

	assert.Equal(t, 0, f.repo.saves)
	assert.Equal(t, 0, f.dispatcher.count())
	assert.Equal(t, 1, f.metrics.failed["validation"])
}

func TestBookingService_CreateBooking_UnknownItem(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindTour, 15000)
	// Item is never added to the repo.

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(item))
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingService_CreateBooking_ArchivedItem(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindTour, 15000)
	item.Archive()
	f.itemRepo.add(item)

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(item))
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestBookingService_CreateBooking_NotificationFailureDoesNotFailBooking(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindTour, 15000)
	f.itemRepo.add(item)
	f.dispatcher.sendErr = domain.NewUnavailableError("broker down", nil)

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(item))
	require.NoError(t, err)
	assert.NotNil(t, dto)
	assert.Equal(t, 1, f.repo.count())
	assert.Equal(t, 1, f.metrics.notifyFailed)
}

func TestBookingService_ComputeQuote(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindTour, 15000)
	f.itemRepo.add(item)

	now := time.Now().UTC()
	f.couponRepo.add(mustCoupon(t, "EXPIRED", 10, now.AddDate(0, -2, 0), now.AddDate(0, -1, 0)))

	// An expired coupon yields an undiscounted quote plus the status, not an error.
	resp, err := f.service.ComputeQuote(context.Background(), QuoteRequest{
		ItemKind:   string(item.Kind()),
		ItemID:     item.ID(),
		Guests:     4,
		CouponCode: "EXPIRED",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60000), resp.Quote.TotalCents)
	assert.Equal(t, int64(0), resp.Quote.DiscountCents)
	require.NotNil(t, resp.Coupon)
	assert.Equal(t, CouponStatusExpired, resp.Coupon.Status)
}

func TestBookingService_CompleteBooking(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindAccommodation, 20000)
	f.itemRepo.add(item)

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(item))
	require.NoError(t, err)

	require.NoError(t, f.service.CompleteBooking(context.Background(), dto.ID))

	stored, err := f.repo.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusCompleted, stored.Status())

	// Completing again is an invalid transition.
	err = f.service.CompleteBooking(context.Background(), dto.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestBookingService_CancelBooking(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindAccommodation, 20000)
	f.itemRepo.add(item)
	owner := uuid.New()

	dto, err := f.service.CreateBooking(context.Background(), owner, validCreateRequest(item))
	require.NoError(t, err)

	t.Run("stranger cannot cancel", func(t *testing.T) {
		_, err := f.service.CancelBooking(context.Background(), dto.ID, uuid.New(), auth.RoleCustomer, "")
		require.Error(t, err)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("owner cancels", func(t *testing.T) {
		cancelled, err := f.service.CancelBooking(context.Background(), dto.ID, owner, auth.RoleCustomer, "change of plans")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", cancelled.Status)
		assert.Equal(t, "change of plans", cancelled.CancelNote)
	})

	t.Run("cancelling twice is rejected", func(t *testing.T) {
		_, err := f.service.CancelBooking(context.Background(), dto.ID, owner, auth.RoleCustomer, "again")
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	})
}

func TestBookingService_CancelBooking_AdminOverride(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindAccommodation, 20000)
	f.itemRepo.add(item)

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(item))
	require.NoError(t, err)

	cancelled, err := f.service.CancelBooking(context.Background(), dto.ID, uuid.New(), auth.RoleAdmin, "fraud review")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
}

func TestBookingService_GetBooking_Ownership(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindAccommodation, 20000)
	f.itemRepo.add(item)
	owner := uuid.New()

	dto, err := f.service.CreateBooking(context.Background(), owner, validCreateRequest(item))
	require.NoError(t, err)

	got, err := f.service.GetBooking(context.Background(), dto.ID, owner, auth.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, got.ID)

	_, err = f.service.GetBooking(context.Background(), dto.ID, uuid.New(), auth.RoleCustomer)
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = f.service.GetBooking(context.Background(), dto.ID, uuid.New(), auth.RoleAdmin)
	require.NoError(t, err)
}

func TestBookingService_GetBookingStats(t *testing.T) {
	f := newBookingFixture(t)
	item := mustItem(t, bookingDomain.KindAccommodation, 20000)
	f.itemRepo.add(item)
	owner := uuid.New()

	first, err := f.service.CreateBooking(context.Background(), owner, validCreateRequest(item))
	require.NoError(t, err)
	_, err = f.service.CreateBooking(context.Background(), owner, validCreateRequest(item))
	require.NoError(t, err)
	require.NoError(t, f.service.CompleteBooking(context.Background(), first.ID))

	stats, err := f.service.GetBookingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["confirmed"])
	assert.Equal(t, int64(1), stats.ByStatus["completed"])
}
