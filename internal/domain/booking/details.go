package booking

import (
	"net/mail"
	"strings"
	"time"

	"github.com/voyago/service-booking/internal/domain"
)

// PaymentMethod is the customer's selected payment option.
type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentOnArrival    PaymentMethod = "pay_on_arrival"
)

// IsValid returns true if the payment method is recognized.
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCard, PaymentBankTransfer, PaymentOnArrival:
		return true
	}
	return false
}

// ContactDetails is an immutable value object with the customer's contact
// information for a booking.
type ContactDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// StayPeriod is the requested date range. End must be strictly after start.
type StayPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Details carries every customer-supplied field of a booking attempt.
// Validate re-checks the full set of required-field invariants at submit
// time, regardless of what the caller's own form layer already enforced.
type Details struct {
	Stay           StayPeriod
	Guests         int
	Contact        ContactDetails
	SpecialRequest string
	Payment        PaymentMethod
	TermsAccepted  bool
}

// GuestBounds is the allowed guest-count range for an item.
type GuestBounds struct {
	Min int
	Max int
}

// DefaultGuestBounds is used when an item does not declare its own range.
var DefaultGuestBounds = GuestBounds{Min: 1, Max: 10}

// Validate checks all required-field invariants and returns a field-specific
// validation error for the first violation found. Violations never reach
// persistence.
func (d Details) Validate(bounds GuestBounds) error {
	if d.Stay.Start.IsZero() {
		return domain.NewFieldValidationError("start_date", "start date is required")
	}
	if d.Stay.End.IsZero() {
		return domain.NewFieldValidationError("end_date", "end date is required")
	}
	if !d.Stay.End.After(d.Stay.Start) {
		return domain.NewFieldValidationError("end_date", "end date must be after start date")
	}
	if d.Guests < bounds.Min || d.Guests > bounds.Max {
		return domain.NewFieldValidationError("guests", "guest count is out of range")
	}
	if strings.TrimSpace(d.Contact.Name) == "" {
		return domain.NewFieldValidationError("name", "name is required")
	}
	if err := validateEmail(d.Contact.Email); err != nil {
		return err
	}
	if !d.Payment.IsValid() {
		return domain.NewFieldValidationError("payment_method", "payment method is required")
	}
	if !d.TermsAccepted {
		return domain.NewFieldValidationError("terms_accepted", "terms and conditions must be accepted")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.NewFieldValidationError("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return domain.NewFieldValidationError("email", "email is not a valid address")
	}
	return nil
}
