package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

var submitTracer = otel.Tracer("mentoverse.internal.booking.submit")

// Submitter turns a complete draft into a confirmation.
type Submitter interface {
	Submit(ctx context.Context, t SubmitTicket) (Confirmation, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, t SubmitTicket) (Confirmation, error)

func (f SubmitterFunc) Submit(ctx context.Context, t SubmitTicket) (Confirmation, error) {
	return f(ctx, t)
}

// SimulatedSubmitter waits a fixed latency and issues a reference. It has
// no side effects; confirmation sinks run in the Manager once the result
// has landed on its session.
type SimulatedSubmitter struct {
	delay  time.Duration
	refs   ReferenceGenerator
	logger *logging.Logger
	newID  func() string
	now    func() time.Time
}

// NewSimulatedSubmitter builds a submitter. refs defaults to random references.
func NewSimulatedSubmitter(delay time.Duration, refs ReferenceGenerator, logger *logging.Logger) *SimulatedSubmitter {
	if refs == nil {
		refs = NewRandomReferences(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SimulatedSubmitter{delay: delay, refs: refs, logger: logger, newID: uuid.NewString, now: time.Now}
}

// Submit implements Submitter.
func (s *SimulatedSubmitter) Submit(ctx context.Context, t SubmitTicket) (Confirmation, error) {
	ctx, span := submitTracer.Start(ctx, "booking.submit")
	defer span.End()

	d := t.Draft
	if d.Service == nil || d.Mentor == nil {
		span.SetStatus(codes.Error, "incomplete draft")
		return Confirmation{}, ErrStepBlocked
	}
	if err := sleepCtx(ctx, s.delay); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission aborted")
		return Confirmation{}, fmt.Errorf("booking: submit: %w", err)
	}

	c := Confirmation{
		ID:            s.newID(),
		Reference:     s.refs.NextReference(),
		SessionID:     t.SessionID,
		Flow:          t.Flow,
		Service:       *d.Service,
		Mentor:        *d.Mentor,
		AmountPaid:    TotalPaise(d.Service.Price),
		ScheduledDate: d.ScheduledDate,
		ScheduledTime: d.ScheduledTime,
		Contact:       d.Contact,
		PaymentMethod: d.PaymentMethod,
		ConfirmedAt:   s.now().UTC(),
	}
	span.SetAttributes(
		attribute.String("mentoverse.confirmation_id", c.ID),
		attribute.String("mentoverse.reference", c.Reference),
		attribute.String("mentoverse.service_id", c.Service.ID),
		attribute.String("mentoverse.mentor_id", c.Mentor.ID),
		attribute.Int64("mentoverse.amount_paise", c.AmountPaid),
	)
	s.logger.Debug("booking submission simulated",
		"session_id", t.SessionID, "attempt", t.Attempt, "reference", c.Reference)
	return c, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
