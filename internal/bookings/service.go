package bookings

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mentoverse/mentoverse-platform/internal/booking"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

var bookingsTracer = otel.Tracer("mentoverse.internal.bookings")

// RecordSink stores each confirmation as a confirmed booking record.
type RecordSink struct {
	repo   *Repository
	loc    *time.Location
	logger *logging.Logger
}

// NewRecordSink builds the sink. Scheduled times are read in loc.
func NewRecordSink(repo *Repository, loc *time.Location, logger *logging.Logger) *RecordSink {
	if repo == nil {
		panic("bookings: repository required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RecordSink{repo: repo, loc: loc, logger: logger}
}

func (s *RecordSink) Name() string { return "booking_record" }

// HandleConfirmation creates the record. Without a recorded schedule the
// booking is dated at confirmation time.
func (s *RecordSink) HandleConfirmation(ctx context.Context, c *booking.Confirmation) error {
	ctx, span := bookingsTracer.Start(ctx, "bookings.confirm")
	defer span.End()
	span.SetAttributes(
		attribute.String("mentoverse.confirmation_id", c.ID),
		attribute.String("mentoverse.reference", c.Reference),
		attribute.String("mentoverse.mentor_id", c.Mentor.ID),
	)

	date, ok := c.ScheduledAt(s.loc)
	if !ok {
		date = c.ConfirmedAt
	}
	created, err := s.repo.CreateConfirmed(ctx, Booking{
		UserID:        DefaultUserID,
		MentorID:      c.Mentor.ID,
		ServiceID:     c.Service.ID,
		Date:          date,
		Amount:        c.Service.Price,
		Reference:     c.Reference,
		TotalPaise:    c.AmountPaid,
		PaymentMethod: string(c.PaymentMethod),
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("booking confirmed", "reference", c.Reference, "booking_id", created.ID, "mentor_id", c.Mentor.ID)
	return nil
}
