package booking

import (
	"fmt"
	"time"

	"github.com/voyago/service-booking/internal/domain"
)

// CouponSnapshot is the immutable discount captured when a coupon is
// applied. The snapshot is what gets priced and persisted; the live coupon
// record is re-checked separately at submit time.
type CouponSnapshot struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

// Quote is the derived, non-persisted price breakdown shown to the customer
// before submission.
type Quote struct {
	BasePriceCents int64           `json:"base_price_cents"`
	Nights         int             `json:"nights"`
	Guests         int             `json:"guests"`
	SubtotalCents  int64           `json:"subtotal_cents"`
	DiscountCents  int64           `json:"discount_cents"`
	TotalCents     int64           `json:"total_cents"`
	Currency       string          `json:"currency"`
	Coupon         *CouponSnapshot `json:"coupon,omitempty"`
}

// QuoteParams holds the inputs for a price computation.
type QuoteParams struct {
	Kind           ItemKind
	BasePriceCents int64
	Start          time.Time
	End            time.Time
	Guests         int
	Coupon         *CouponSnapshot
}

// QuoteCalculator defines the interface for computing booking quotes.
type QuoteCalculator interface {
	// Compute returns the price breakdown for the given parameters.
	Compute(params QuoteParams) (Quote, error)
}

// StandardQuoteCalculator implements the marketplace pricing rules.
type StandardQuoteCalculator struct{}

// NewStandardQuoteCalculator creates a new StandardQuoteCalculator.
func NewStandardQuoteCalculator() *StandardQuoteCalculator {
	return &StandardQuoteCalculator{}
}

// Compute calculates the quote in integer cents.
//
// Pricing rules:
//   - Accommodation is priced per night: subtotal = base × nights × guests,
//     where nights is the ceiling of the stay span in days.
//   - Every other kind is priced per booking instance: subtotal = base × guests.
//   - A coupon discounts the subtotal by its percentage; the total is floored
//     at zero and the percentage is clamped to [0, 100] even though stored
//     coupons already enforce that range.
func (c *StandardQuoteCalculator) Compute(params QuoteParams) (Quote, error) {
	if !params.Kind.IsValid() {
		return Quote{}, fmt.Errorf("unknown item kind for pricing: %s", params.Kind)
	}
	if params.BasePriceCents <= 0 {
		return Quote{}, fmt.Errorf("base price must be positive")
	}
	if params.Guests < 1 {
		return Quote{}, fmt.Errorf("guest count must be at least 1")
	}

	nights := 1
	if params.Kind.PricedPerNight() {
		n, err := NightsBetween(params.Start, params.End)
		if err != nil {
			return Quote{}, err
		}
		nights = n
	}

	subtotal := params.BasePriceCents * int64(nights) * int64(params.Guests)

	var discount int64
	if params.Coupon != nil {
		pct := params.Coupon.DiscountPercent
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		discount = subtotal * int64(pct) / 100
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	return Quote{
		BasePriceCents: params.BasePriceCents,
		Nights:         nights,
		Guests:         params.Guests,
		SubtotalCents:  subtotal,
		DiscountCents:  discount,
		TotalCents:     total,
		Currency:       domain.CurrencyUSD,
		Coupon:         params.Coupon,
	}, nil
}

// NightsBetween returns the ceiling of the span between start and end in
// days. The range must be at least one night (end strictly after start).
func NightsBetween(start, end time.Time) (int, error) {
	if start.IsZero() || end.IsZero() {
		return 0, fmt.Errorf("both start and end dates are required")
	}
	if !end.After(start) {
		return 0, fmt.Errorf("end date must be after start date")
	}
	span := end.Sub(start)
	nights := int(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		nights++
	}
	return nights, nil
}
