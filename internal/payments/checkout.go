// Package payments creates payment links for confirmed bookings. No money
// moves through this service; links are handed to the user.
package payments

import (
	"context"
	"errors"
)

// Currency for every booking.
const Currency = "inr"

// ErrNoProvider is returned when no payment provider is configured.
var ErrNoProvider = errors.New("payments: no checkout provider configured")

// CheckoutParams describes one booking's payment. BookingID identifies the
// confirmation; Reference is the short code shown to the customer and may
// repeat across bookings.
type CheckoutParams struct {
	BookingID     string
	Reference     string
	AmountPaise   int64
	Description   string
	Method        string // "card" or "upi"
	CustomerEmail string
	MentorID      string
	ServiceID     string
	ScheduledFor  string
	SuccessURL    string
	CancelURL     string
}

// CheckoutResponse is the link the user follows to pay.
type CheckoutResponse struct {
	URL        string
	ProviderID string
}

// LinkCreator creates a payment link.
type LinkCreator interface {
	CreatePaymentLink(ctx context.Context, params CheckoutParams) (*CheckoutResponse, error)
}
