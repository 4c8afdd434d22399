package application

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/voyago/service-booking/internal/domain"
	bookingDomain "github.com/voyago/service-booking/internal/domain/booking"
	catalogDomain "github.com/voyago/service-booking/internal/domain/catalog"
	couponDomain "github.com/voyago/service-booking/internal/domain/coupon"
	"github.com/voyago/service-booking/internal/events"
)

// fakeBookingRepo is an in-memory BookingRepository.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	saveErr  error
	saves    int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.Reference() == reference {
			return bk, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", reference)
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.UserID() == userID {
			result = append(result, bk)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		result = append(result, bk)
	}
	return result, int64(len(result)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

// fakeCouponRepo is an in-memory CouponRepository.
type fakeCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]*couponDomain.Coupon
	findErr error
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{coupons: make(map[string]*couponDomain.Coupon)}
}

func (r *fakeCouponRepo) add(c *couponDomain.Coupon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coupons[c.Code()] = c
}

func (r *fakeCouponRepo) FindByCode(_ context.Context, code string) (*couponDomain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.coupons[code]
	if !ok {
		return nil, domain.NewNotFoundError("Coupon", code)
	}
	return c, nil
}

func (r *fakeCouponRepo) FindByID(_ context.Context, id uuid.UUID) (*couponDomain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, domain.NewNotFoundError("Coupon", id.String())
}

func (r *fakeCouponRepo) Save(_ context.Context, c *couponDomain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.coupons[c.Code()]; exists {
		return domain.NewConflictError("coupon code already exists")
	}
	r.coupons[c.Code()] = c
	return nil
}

// fakeItemRepo is an in-memory ItemRepository.
type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*catalogDomain.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*catalogDomain.Item)}
}

func (r *fakeItemRepo) add(item *catalogDomain.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID()] = item
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*catalogDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Item", id.String())
	}
	return item, nil
}

func (r *fakeItemRepo) FindByRef(_ context.Context, ref bookingDomain.ItemRef) (*catalogDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[ref.ID]
	if !ok || item.Kind() != ref.Kind {
		return nil, domain.NewNotFoundError(string(ref.Kind), ref.ID.String())
	}
	return item, nil
}

func (r *fakeItemRepo) ListByKind(_ context.Context, kind bookingDomain.ItemKind, _, _ int) ([]*catalogDomain.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*catalogDomain.Item
	for _, item := range r.items {
		if item.Kind() == kind && item.IsBookable() {
			result = append(result, item)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeItemRepo) ListActive(_ context.Context, _, _ int) ([]*catalogDomain.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*catalogDomain.Item
	for _, item := range r.items {
		if item.IsBookable() {
			result = append(result, item)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *catalogDomain.Item) error {
	r.add(item)
	return nil
}

// fakeDispatcher records dispatched notifications.
type fakeDispatcher struct {
	mu     sync.Mutex
	sent   []events.BookingConfirmedEvent
	sendErr error
}

func (d *fakeDispatcher) SendBookingNotification(_ context.Context, evt events.BookingConfirmedEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sendErr != nil {
		return d.sendErr
	}
	d.sent = append(d.sent, evt)
	return nil
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

// fakeMetrics records metric calls without prometheus.
type fakeMetrics struct {
	mu            sync.Mutex
	created       int
	failed        map[string]int
	couponLookups map[string]int
	notifyFailed  int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		failed:        make(map[string]int),
		couponLookups: make(map[string]int),
	}
}

func (m *fakeMetrics) BookingCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *fakeMetrics) BookingFailed(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[reason]++
}

func (m *fakeMetrics) CouponLookup(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.couponLookups[outcome]++
}

func (m *fakeMetrics) NotificationFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifyFailed++
}
