package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/mentoverse/mentoverse-platform/internal/events"
	"github.com/mentoverse/mentoverse-platform/internal/notify"
	"github.com/mentoverse/mentoverse-platform/internal/payments"
)

// ConfirmationSink receives each landed confirmation once, in registration
// order. A sink may annotate the confirmation for the sinks after it.
type ConfirmationSink interface {
	Name() string
	HandleConfirmation(ctx context.Context, c *Confirmation) error
}

// runSinks fans c out to every sink. Failures are logged and do not stop
// the sinks after them.
func (m *Manager) runSinks(ctx context.Context, c *Confirmation) {
	for _, sink := range m.sinks {
		if err := runSink(ctx, sink, c); err != nil {
			m.logger.Error("confirmation sink failed",
				"sink", sink.Name(), "confirmation_id", c.ID, "reference", c.Reference, "error", err)
		}
	}
}

func runSink(ctx context.Context, sink ConfirmationSink, c *Confirmation) error {
	ctx, span := submitTracer.Start(ctx, "booking.sink."+sink.Name())
	defer span.End()
	if err := sink.HandleConfirmation(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// PaymentLinkSink creates a payment link for the total and stores its URL
// on the confirmation.
type PaymentLinkSink struct {
	links payments.LinkCreator
}

func NewPaymentLinkSink(links payments.LinkCreator) *PaymentLinkSink {
	return &PaymentLinkSink{links: links}
}

func (s *PaymentLinkSink) Name() string { return "payment_link" }

func (s *PaymentLinkSink) HandleConfirmation(ctx context.Context, c *Confirmation) error {
	if s.links == nil {
		return nil
	}
	schedule := ""
	if c.ScheduledDate != "" {
		schedule = c.ScheduledDate + " " + c.ScheduledTime
	}
	resp, err := s.links.CreatePaymentLink(ctx, payments.CheckoutParams{
		BookingID:     c.ID,
		Reference:     c.Reference,
		AmountPaise:   c.AmountPaid,
		Description:   fmt.Sprintf("%s with %s", c.Service.Name, c.Mentor.Name),
		Method:        string(c.PaymentMethod),
		CustomerEmail: c.Contact.Email,
		MentorID:      c.Mentor.ID,
		ServiceID:     c.Service.ID,
		ScheduledFor:  schedule,
	})
	if err != nil {
		return fmt.Errorf("booking: payment link: %w", err)
	}
	c.PaymentURL = resp.URL
	return nil
}

type confirmationNotifier interface {
	NotifyBookingConfirmed(ctx context.Context, b notify.BookingConfirmed) error
}

// EmailSink sends the confirmation email.
type EmailSink struct {
	notifier confirmationNotifier
}

func NewEmailSink(notifier confirmationNotifier) *EmailSink {
	return &EmailSink{notifier: notifier}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) HandleConfirmation(ctx context.Context, c *Confirmation) error {
	if s.notifier == nil {
		return nil
	}
	r := NewReceipt(*c)
	if r.Date == "" {
		r.Date, r.Time = NotAvailable, NotAvailable
	}
	return s.notifier.NotifyBookingConfirmed(ctx, notify.BookingConfirmed{
		Reference:     r.Reference,
		ServiceName:   r.ServiceName,
		MentorName:    r.MentorName,
		Date:          r.Date,
		Time:          r.Time,
		Amount:        r.Amount,
		PaymentMethod: string(c.PaymentMethod),
		PaymentURL:    c.PaymentURL,
		CustomerName:  c.Contact.Name,
		CustomerEmail: c.Contact.Email,
		CustomerPhone: c.Contact.Phone,
		Message:       c.Contact.Message,
	})
}

type outboxWriter interface {
	Insert(ctx context.Context, aggregateID string, eventType string, payload any) (uuid.UUID, error)
}

// OutboxSink appends booking.confirmed.v1 to the outbox.
type OutboxSink struct {
	outbox outboxWriter
}

func NewOutboxSink(outbox outboxWriter) *OutboxSink {
	return &OutboxSink{outbox: outbox}
}

func (s *OutboxSink) Name() string { return "outbox" }

func (s *OutboxSink) HandleConfirmation(ctx context.Context, c *Confirmation) error {
	if s.outbox == nil {
		return nil
	}
	event := events.BookingConfirmedV1{
		EventID:        uuid.NewString(),
		ConfirmationID: c.ID,
		Reference:      c.Reference,
		SessionID:      c.SessionID,
		Flow:           string(c.Flow),
		ServiceID:      c.Service.ID,
		MentorID:       c.Mentor.ID,
		AmountPaise:    c.AmountPaid,
		PaymentMethod:  string(c.PaymentMethod),
		PaymentURL:     c.PaymentURL,
		ScheduledDate:  c.ScheduledDate,
		ScheduledTime:  c.ScheduledTime,
		CustomerEmail:  c.Contact.Email,
		ConfirmedAt:    c.ConfirmedAt,
	}
	if _, err := s.outbox.Insert(ctx, c.ID, events.TypeBookingConfirmed, event); err != nil {
		return fmt.Errorf("booking: outbox: %w", err)
	}
	return nil
}
