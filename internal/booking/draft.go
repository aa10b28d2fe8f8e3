package booking

import (
	"time"

	"github.com/mentoverse/mentoverse-platform/internal/catalog"
	"github.com/mentoverse/mentoverse-platform/internal/mentors"
)

// PaymentMethod is the user's chosen way to pay.
type PaymentMethod string

const (
	PaymentNone PaymentMethod = ""
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

// Valid reports whether m is card or upi.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentUPI
}

// Contact fields.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldMessage = "message"
)

// Contact is what the user enters on the details step.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// FieldErrors maps a contact field to its message.
type FieldErrors map[string]string

// Draft is the in-progress booking owned by one wizard session.
type Draft struct {
	Step          int              `json:"step"`
	Service       *catalog.Service `json:"service,omitempty"`
	Mentor        *mentors.Mentor  `json:"mentor,omitempty"`
	ScheduledDate string           `json:"scheduledDate,omitempty"`
	ScheduledTime string           `json:"scheduledTime,omitempty"`
	Contact       Contact          `json:"contact"`
	PaymentMethod PaymentMethod    `json:"paymentMethod,omitempty"`
	Errors        FieldErrors      `json:"validationErrors,omitempty"`
}

func (d Draft) clone() Draft {
	out := d
	if d.Service != nil {
		s := *d.Service
		out.Service = &s
	}
	if d.Mentor != nil {
		m := *d.Mentor
		out.Mentor = &m
	}
	if d.Errors != nil {
		out.Errors = make(FieldErrors, len(d.Errors))
		for k, v := range d.Errors {
			out.Errors[k] = v
		}
	}
	return out
}

// Confirmation is produced once, at the terminal step.
type Confirmation struct {
	ID            string          `json:"id"`
	Reference     string          `json:"reference"`
	SessionID     string          `json:"sessionId"`
	Flow          Flow            `json:"flow"`
	Service       catalog.Service `json:"service"`
	Mentor        mentors.Mentor  `json:"mentor"`
	AmountPaid    int64           `json:"amountPaid"` // paise
	ScheduledDate string          `json:"scheduledDate,omitempty"`
	ScheduledTime string          `json:"scheduledTime,omitempty"`
	Contact       Contact         `json:"contact"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	PaymentURL    string          `json:"paymentUrl,omitempty"`
	ConfirmedAt   time.Time       `json:"confirmedAt"`
}

// ScheduledAt combines the scheduled date and time in loc. It reports false
// when no complete schedule was recorded.
func (c Confirmation) ScheduledAt(loc *time.Location) (time.Time, bool) {
	if c.ScheduledDate == "" || c.ScheduledTime == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout+" "+slotLayout, c.ScheduledDate+" "+c.ScheduledTime, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
