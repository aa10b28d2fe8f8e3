// Package bookings keeps booking records and the confirmation ledger.
package bookings

import (
	"errors"
	"strings"
	"time"
)

// Status is a booking's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// DefaultUserID is the signed-in user until authentication exists.
const DefaultUserID = "user123"

// Booking is one booked session. Amount is the base price in whole rupees.
type Booking struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	MentorID      string    `json:"mentorId"`
	ServiceID     string    `json:"serviceId"`
	Date          time.Time `json:"date"`
	Status        Status    `json:"status"`
	Amount        int64     `json:"amount"`
	Reference     string    `json:"reference,omitempty"`
	TotalPaise    int64     `json:"totalPaise,omitempty"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
}

// Validate checks the fields a booking record needs.
func (b Booking) Validate() error {
	if strings.TrimSpace(b.MentorID) == "" || strings.TrimSpace(b.ServiceID) == "" {
		return errors.New("bookings: mentor and service are required")
	}
	if b.Date.IsZero() {
		return errors.New("bookings: date is required")
	}
	switch b.Status {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
	default:
		return errors.New("bookings: unknown status")
	}
	if b.Amount < 0 {
		return errors.New("bookings: amount must not be negative")
	}
	return nil
}

// WithID returns b carrying id.
func WithID(b Booking, id string) Booking {
	b.ID = id
	return b
}

// Upcoming reports whether b is confirmed and still ahead of now.
func (b Booking) Upcoming(now time.Time) bool {
	return b.Status == StatusConfirmed && b.Date.After(now)
}

// Past reports whether b is completed or already happened.
func (b Booking) Past(now time.Time) bool {
	return b.Status == StatusCompleted || !b.Date.After(now)
}

// Fixtures returns the seed bookings, dated relative to now.
func Fixtures(now time.Time) []Booking {
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }
	return []Booking{
		{ID: "booking1", UserID: DefaultUserID, MentorID: "1", ServiceID: "mock-interview", Date: day(2), Status: StatusConfirmed, Amount: 1500},
		{ID: "booking2", UserID: DefaultUserID, MentorID: "2", ServiceID: "career-guidance", Date: day(5), Status: StatusConfirmed, Amount: 1800},
		{ID: "booking3", UserID: DefaultUserID, MentorID: "3", ServiceID: "linkedin-review", Date: day(-10), Status: StatusCompleted, Amount: 1200},
		{ID: "booking4", UserID: DefaultUserID, MentorID: "4", ServiceID: "cv-resume-review", Date: day(-15), Status: StatusCompleted, Amount: 1200},
	}
}
