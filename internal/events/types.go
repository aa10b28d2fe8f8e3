package events

import "time"

// Event types written to the outbox.
const (
	TypeBookingConfirmed    = "booking.confirmed.v1"
	TypeApplicationReceived = "mentor.application_received.v1"
)

// BookingConfirmedV1 is appended when a booking is confirmed.
type BookingConfirmedV1 struct {
	EventID        string    `json:"event_id"`
	ConfirmationID string    `json:"confirmation_id"`
	Reference      string    `json:"reference"`
	SessionID      string    `json:"session_id"`
	Flow           string    `json:"flow"`
	ServiceID      string    `json:"service_id"`
	MentorID       string    `json:"mentor_id"`
	AmountPaise    int64     `json:"amount_paise"`
	PaymentMethod  string    `json:"payment_method"`
	PaymentURL     string    `json:"payment_url,omitempty"`
	ScheduledDate  string    `json:"scheduled_date"`
	ScheduledTime  string    `json:"scheduled_time"`
	CustomerEmail  string    `json:"customer_email"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

// MentorApplicationReceivedV1 is appended when a mentor applies.
type MentorApplicationReceivedV1 struct {
	EventID       string    `json:"event_id"`
	ApplicationID string    `json:"application_id"`
	Email         string    `json:"email"`
	Expertise     []string  `json:"expertise"`
	ReceivedAt    time.Time `json:"received_at"`
}
