package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voyago/service-booking/internal/domain"
	bookingDomain "github.com/voyago/service-booking/internal/domain/booking"
	catalogDomain "github.com/voyago/service-booking/internal/domain/catalog"
)

// BookingFlow is a session-scoped editing surface for one booking form. It
// keeps the draft details, the applied coupon, and a live quote that is
// recomputed on every relevant change. All methods are safe for concurrent
// use; coupon application and submission are serialized so at most one of
// each is in flight, and a flow that has submitted successfully is frozen.
type BookingFlow struct {
	mu sync.Mutex

	userID uuid.UUID
	item   *catalogDomain.Item

	draft  bookingDomain.Details
	coupon *CouponResult
	quote  *bookingDomain.Quote

	couponInFlight bool
	submitInFlight bool
	submitted      bool
	booking        *BookingDTO
	onSuccess      func(bookingID uuid.UUID)

	bookings   *BookingService
	coupons    *CouponService
	calculator bookingDomain.QuoteCalculator
}

// NewBookingFlow starts a flow for the given user and catalog item.
func NewBookingFlow(
	userID uuid.UUID,
	item *catalogDomain.Item,
	bookings *BookingService,
	coupons *CouponService,
	calculator bookingDomain.QuoteCalculator,
) *BookingFlow {
	return &BookingFlow{
		userID: userID,
		item:   item,
		draft: bookingDomain.Details{
			Guests:  1,
			Payment: bookingDomain.PaymentCard,
		},
		bookings:   bookings,
		coupons:    coupons,
		calculator: calculator,
	}
}

// OnSuccess registers a callback invoked once after a successful submit,
// with the new booking's ID.
func (f *BookingFlow) OnSuccess(fn func(bookingID uuid.UUID)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSuccess = fn
}

// SetStay updates the stay period and requotes.
func (f *BookingFlow) SetStay(start, end time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	f.draft.Stay = bookingDomain.StayPeriod{Start: start, End: end}
	f.requote()
	return nil
}

// SetGuests updates the guest count and requotes.
func (f *BookingFlow) SetGuests(guests int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	f.draft.Guests = guests
	f.requote()
	return nil
}

// SetContact updates the contact details. Contact fields do not affect the
// price, so no requote happens.
func (f *BookingFlow) SetContact(contact bookingDomain.ContactDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	f.draft.Contact = contact
	return nil
}

// SetSpecialRequest updates the free-text request field.
func (f *BookingFlow) SetSpecialRequest(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	f.draft.SpecialRequest = text
	return nil
}

// SetPayment updates the payment method.
func (f *BookingFlow) SetPayment(method bookingDomain.PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	f.draft.Payment = method
	return nil
}

// AcceptTerms records the terms checkbox.
func (f *BookingFlow) AcceptTerms(accepted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	f.draft.TermsAccepted = accepted
	return nil
}

// ApplyCoupon validates the code and, when active, attaches it to the draft.
// A blank code is a no-op. Only one coupon may be attached at a time; the
// current one must be cleared first. A lookup failure leaves any previously
// applied coupon untouched.
func (f *BookingFlow) ApplyCoupon(ctx context.Context, code string) (CouponResult, error) {
	f.mu.Lock()
	if err := f.editable(); err != nil {
		f.mu.Unlock()
		return CouponResult{}, err
	}
	if f.couponInFlight {
		f.mu.Unlock()
		return CouponResult{}, domain.NewConflictError("a coupon validation is already in progress")
	}
	if f.coupon != nil && f.coupon.Status == CouponStatusActive {
		f.mu.Unlock()
		return CouponResult{}, domain.NewConflictError("a coupon is already applied, clear it first")
	}
	f.couponInFlight = true
	f.mu.Unlock()

	result, err := f.coupons.ValidateCoupon(ctx, code, time.Now().UTC())

	f.mu.Lock()
	defer f.mu.Unlock()
	f.couponInFlight = false
	if err != nil {
		return CouponResult{}, err
	}
	if result.Status != CouponStatusBlank {
		f.coupon = &result
		f.requote()
	}
	return result, nil
}

// ClearCoupon removes the applied coupon and requotes.
func (f *BookingFlow) ClearCoupon() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	f.coupon = nil
	f.requote()
	return nil
}

// Quote returns the current quote, or nil when the draft is not priceable yet.
func (f *BookingFlow) Quote() *bookingDomain.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quote == nil {
		return nil
	}
	q := *f.quote
	return &q
}

// Coupon returns the result of the last coupon application, or nil.
func (f *BookingFlow) Coupon() *CouponResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.coupon == nil {
		return nil
	}
	c := *f.coupon
	return &c
}

// Booking returns the created booking after a successful submit, or nil.
func (f *BookingFlow) Booking() *BookingDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.booking
}

// Submit sends the draft through the full booking pipeline. Concurrent
// submits are rejected while one is in flight, and a flow that already
// produced a booking refuses to submit again. On failure the flow returns
// to its editable state with the draft intact.
func (f *BookingFlow) Submit(ctx context.Context) (*BookingDTO, error) {
	f.mu.Lock()
	if f.submitted {
		f.mu.Unlock()
		return nil, domain.NewConflictError("this booking has already been submitted")
	}
	if f.submitInFlight {
		f.mu.Unlock()
		return nil, domain.NewConflictError("a submission is already in progress")
	}
	f.submitInFlight = true
	req := f.buildRequest()
	f.mu.Unlock()

	dto, err := f.bookings.CreateBooking(ctx, f.userID, req)

	f.mu.Lock()
	f.submitInFlight = false
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.submitted = true
	f.booking = dto
	callback := f.onSuccess
	f.mu.Unlock()

	if callback != nil {
		callback(dto.ID)
	}
	return dto, nil
}

// editable reports whether the flow still accepts edits.
func (f *BookingFlow) editable() error {
	if f.submitted {
		return domain.NewConflictError("this booking has already been submitted")
	}
	if f.submitInFlight {
		return domain.NewConflictError("a submission is already in progress")
	}
	return nil
}

// requote recomputes the quote from the current draft. An unpriceable draft
// (missing dates, zero guests) clears the quote instead of erroring; the
// submit pipeline surfaces those problems as field errors.
func (f *BookingFlow) requote() {
	var snapshot *bookingDomain.CouponSnapshot
	if f.coupon != nil {
		snapshot = f.coupon.Snapshot()
	}
	quote, err := f.calculator.Compute(bookingDomain.QuoteParams{
		Kind:           f.item.Kind(),
		BasePriceCents: f.item.BasePriceCents(),
		Start:          f.draft.Stay.Start,
		End:            f.draft.Stay.End,
		Guests:         f.draft.Guests,
		Coupon:         snapshot,
	})
	if err != nil {
		f.quote = nil
		return
	}
	f.quote = &quote
}

// buildRequest converts the draft into a submission request. Caller holds the lock.
func (f *BookingFlow) buildRequest() CreateBookingRequest {
	req := CreateBookingRequest{
		ItemKind:       string(f.item.Kind()),
		ItemID:         f.item.ID(),
		StartDate:      f.draft.Stay.Start,
		EndDate:        f.draft.Stay.End,
		Guests:         f.draft.Guests,
		Name:           f.draft.Contact.Name,
		Email:          f.draft.Contact.Email,
		Phone:          f.draft.Contact.Phone,
		SpecialRequest: f.draft.SpecialRequest,
		PaymentMethod:  string(f.draft.Payment),
		TermsAccepted:  f.draft.TermsAccepted,
	}
	if f.coupon != nil && f.coupon.Status == CouponStatusActive {
		req.CouponCode = f.coupon.Code
	}
	return req
}
