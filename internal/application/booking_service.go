package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/service-booking/internal/auth"
	"github.com/voyago/service-booking/internal/domain"
	bookingDomain "github.com/voyago/service-booking/internal/domain/booking"
	catalogDomain "github.com/voyago/service-booking/internal/domain/catalog"
	"github.com/voyago/service-booking/internal/events"
	"github.com/voyago/service-booking/internal/notification"
)

// CreateBookingRequest holds the data for one booking submission attempt.
// The binding tags guard the transport edge; every invariant is re-checked
// in the domain layer regardless.
type CreateBookingRequest struct {
	ItemKind       string    `json:"item_kind" binding:"required"`
	ItemID         uuid.UUID `json:"item_id" binding:"required"`
	StartDate      time.Time `json:"start_date" binding:"required"`
	EndDate        time.Time `json:"end_date" binding:"required"`
	Guests         int       `json:"guests" binding:"required,min=1"`
	Name           string    `json:"name" binding:"required"`
	Email          string    `json:"email" binding:"required,email"`
	Phone          string    `json:"phone"`
	SpecialRequest string    `json:"special_request"`
	PaymentMethod  string    `json:"payment_method" binding:"required"`
	TermsAccepted  bool      `json:"terms_accepted"`
	CouponCode     string    `json:"coupon_code"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID             uuid.UUID                    `json:"id"`
	Reference      string                       `json:"reference"`
	UserID         uuid.UUID                    `json:"user_id"`
	ItemKind       string                       `json:"item_kind"`
	ItemID         uuid.UUID                    `json:"item_id"`
	ItemName       string                       `json:"item_name"`
	StartDate      time.Time                    `json:"start_date"`
	EndDate        time.Time                    `json:"end_date"`
	Guests         int                          `json:"guests"`
	Contact        bookingDomain.ContactDetails `json:"contact"`
	SpecialRequest string                       `json:"special_request,omitempty"`
	PaymentMethod  string                       `json:"payment_method"`
	Quote          bookingDomain.Quote          `json:"quote"`
	Status         string                       `json:"status"`
	CompletedAt    *time.Time                   `json:"completed_at,omitempty"`
	CancelledAt    *time.Time                   `json:"cancelled_at,omitempty"`
	CancelNote     string                       `json:"cancel_note,omitempty"`
	CreatedAt      time.Time                    `json:"created_at"`
}

// BookingMetrics records booking outcomes. Satisfied by *metrics.Metrics.
type BookingMetrics interface {
	BookingCreated()
	BookingFailed(reason string)
	NotificationFailed()
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookingRepo bookingDomain.BookingRepository
	itemRepo    catalogDomain.ItemRepository
	coupons     *CouponService
	calculator  bookingDomain.QuoteCalculator
	dispatcher  notification.Dispatcher
	producer    *events.Producer
	metrics     BookingMetrics
	logger      *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookingRepo bookingDomain.BookingRepository,
	itemRepo catalogDomain.ItemRepository,
	coupons *CouponService,
	calculator bookingDomain.QuoteCalculator,
	dispatcher notification.Dispatcher,
	producer *events.Producer,
	metrics BookingMetrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		itemRepo:    itemRepo,
		coupons:     coupons,
		calculator:  calculator,
		dispatcher:  dispatcher,
		producer:    producer,
		metrics:     metrics,
		logger:      logger,
	}
}

// QuoteRequest holds the inputs for a price preview.
type QuoteRequest struct {
	ItemKind   string    `json:"item_kind" binding:"required"`
	ItemID     uuid.UUID `json:"item_id" binding:"required"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Guests     int       `json:"guests" binding:"required,min=1"`
	CouponCode string    `json:"coupon_code"`
}

// QuoteResponse pairs a computed quote with the coupon outcome, so the
// caller can show "coupon expired" next to an undiscounted total.
type QuoteResponse struct {
	Quote  bookingDomain.Quote `json:"quote"`
	Coupon *CouponResult       `json:"coupon,omitempty"`
}

// ComputeQuote prices a prospective booking. An inactive or unknown coupon
// yields a zero discount and a descriptive result; only a failed lookup is
// an error.
func (s *BookingService) ComputeQuote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	item, err := s.itemRepo.FindByRef(ctx, bookingDomain.ItemRef{
		Kind: bookingDomain.ItemKind(req.ItemKind),
		ID:   req.ItemID,
	})
	if err != nil {
		return nil, err
	}

	var couponResult *CouponResult
	var snapshot *bookingDomain.CouponSnapshot
	if req.CouponCode != "" {
		result, err := s.coupons.ValidateCoupon(ctx, req.CouponCode, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		couponResult = &result
		snapshot = result.Snapshot()
	}

	quote, err := s.calculator.Compute(bookingDomain.QuoteParams{
		Kind:           item.Kind(),
		BasePriceCents: item.BasePriceCents(),
		Start:          req.StartDate,
		End:            req.EndDate,
		Guests:         req.Guests,
		Coupon:         snapshot,
	})
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	return &QuoteResponse{Quote: quote, Coupon: couponResult}, nil
}

// CreateBooking runs the full submission pipeline: re-validate the request,
// resolve the item, re-validate the coupon against the clock, price, persist,
// then dispatch the confirmation notification best-effort.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	item, err := s.itemRepo.FindByRef(ctx, bookingDomain.ItemRef{
		Kind: bookingDomain.ItemKind(req.ItemKind),
		ID:   req.ItemID,
	})
	if err != nil {
		s.fail("item_lookup")
		return nil, err
	}
	if !item.IsBookable() {
		s.fail("item_not_bookable")
		return nil, domain.NewValidationError("this item is no longer bookable")
	}

	details := bookingDomain.Details{
		Stay:           bookingDomain.StayPeriod{Start: req.StartDate, End: req.EndDate},
		Guests:         req.Guests,
		Contact:        bookingDomain.ContactDetails{Name: req.Name, Email: req.Email, Phone: req.Phone},
		SpecialRequest: req.SpecialRequest,
		Payment:        bookingDomain.PaymentMethod(req.PaymentMethod),
		TermsAccepted:  req.TermsAccepted,
	}
	if err := details.Validate(item.GuestBounds()); err != nil {
		s.fail("validation")
		return nil, err
	}

	// The applied coupon is a snapshot from an earlier validation; re-check
	// it against the clock so an expired-since-applied discount is never
	// honored at submit time.
	var snapshot *bookingDomain.CouponSnapshot
	if req.CouponCode != "" {
		result, err := s.coupons.ValidateCoupon(ctx, req.CouponCode, time.Now().UTC())
		if err != nil {
			s.fail("coupon_lookup")
			return nil, err
		}
		switch result.Status {
		case CouponStatusActive:
			snapshot = result.Snapshot()
		case CouponStatusNotFound:
			s.fail("coupon_not_found")
			return nil, domain.NewFieldValidationError("coupon_code", "coupon code not recognized")
		case CouponStatusExpired:
			s.fail("coupon_expired")
			return nil, domain.NewFieldValidationError("coupon_code", "coupon expired before submission")
		}
	}

	quote, err := s.calculator.Compute(bookingDomain.QuoteParams{
		Kind:           item.Kind(),
		BasePriceCents: item.BasePriceCents(),
		Start:          req.StartDate,
		End:            req.EndDate,
		Guests:         req.Guests,
		Coupon:         snapshot,
	})
	if err != nil {
		s.fail("pricing")
		return nil, domain.NewValidationError(err.Error())
	}

	bk, err := bookingDomain.NewBooking(userID, item.Ref(), item.Name(), details, item.GuestBounds(), quote)
	if err != nil {
		s.fail("validation")
		return nil, err
	}

	// Persistence is the single atomicity boundary: on failure nothing was
	// created and the caller may retry the whole submission.
	if err := s.bookingRepo.Save(ctx, bk); err != nil {
		s.fail("persistence")
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BookingCreated()
	}

	s.notifyConfirmed(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a booking that is not yet in a terminal state. Only
// the booking's owner or an admin may cancel.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, cancelledBy uuid.UUID, role auth.Role, reason string) (*BookingDTO, error) {
	bk, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if bk.UserID() != cancelledBy && role != auth.RoleAdmin {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookingRepo.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingCancelledEvent{
		BookingID:   bk.ID(),
		Reference:   bk.Reference(),
		CancelledBy: cancelledBy,
		Reason:      reason,
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCancelled, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// CompleteBooking finalizes a booking after payment settlement. Called by
// the payment event consumer.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	bk, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := bk.Complete(); err != nil {
		return err
	}

	bk.IncrementVersion()
	if err := s.bookingRepo.Update(ctx, bk); err != nil {
		return err
	}

	evt := events.BookingCompletedEvent{
		BookingID:  bk.ID(),
		Reference:  bk.Reference(),
		UserID:     bk.UserID(),
		TotalCents: bk.Quote().TotalCents,
		Currency:   bk.Quote().Currency,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCompleted, bk.ID().String(), evt)
	return nil
}

// GetBooking retrieves a single booking. Customers can only see their own.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requestedBy uuid.UUID, role auth.Role) (*BookingDTO, error) {
	bk, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.UserID() != requestedBy && role != auth.RoleAdmin {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetUserBookings retrieves paginated bookings for a specific user.
func (s *BookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookingRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookingRepo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookingRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// notifyConfirmed dispatches the confirmation notification. The booking is
// already persisted; a dispatch failure is logged and swallowed.
func (s *BookingService) notifyConfirmed(ctx context.Context, bk *bookingDomain.Booking) {
	if s.dispatcher == nil {
		return
	}
	evt := events.BookingConfirmedEvent{
		BookingID:  bk.ID(),
		Reference:  bk.Reference(),
		UserID:     bk.UserID(),
		ItemKind:   string(bk.Item().Kind),
		ItemName:   bk.ItemName(),
		Email:      bk.Details().Contact.Email,
		TotalCents: bk.Quote().TotalCents,
		Currency:   bk.Quote().Currency,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.dispatcher.SendBookingNotification(ctx, evt); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationFailed()
		}
		s.logger.Error("failed to dispatch booking notification",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	if s.producer == nil {
		return
	}
	ce, err := events.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.Publish(ctx, events.TopicBookingEvents, key, ce); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *BookingService) fail(reason string) {
	if s.metrics != nil {
		s.metrics.BookingFailed(reason)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:             bk.ID(),
		Reference:      bk.Reference(),
		UserID:         bk.UserID(),
		ItemKind:       string(bk.Item().Kind),
		ItemID:         bk.Item().ID,
		ItemName:       bk.ItemName(),
		StartDate:      bk.Details().Stay.Start,
		EndDate:        bk.Details().Stay.End,
		Guests:         bk.Details().Guests,
		Contact:        bk.Details().Contact,
		SpecialRequest: bk.Details().SpecialRequest,
		PaymentMethod:  string(bk.Details().Payment),
		Quote:          bk.Quote(),
		Status:         string(bk.Status()),
		CompletedAt:    bk.CompletedAt(),
		CancelledAt:    bk.CancelledAt(),
		CancelNote:     bk.CancelNote(),
		CreatedAt:      bk.CreatedAt(),
	}
}
