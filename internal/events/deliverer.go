package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// DeliveryHandler publishes one outbox entry to a transport.
type DeliveryHandler interface {
	Handle(ctx context.Context, entry OutboxEntry) error
}

type outboxSource interface {
	FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error)
}

type deliveryTracker interface {
	AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

const (
	defaultDeliveryBatch    = 25
	defaultDeliveryInterval = 2 * time.Second
)

// Deliverer drains the outbox on a ticker. A failed entry stays pending and
// is retried on the next tick. With a tracker, an entry that was published
// but never marked delivered is not published again.
type Deliverer struct {
	source    outboxSource
	handler   DeliveryHandler
	tracker   deliveryTracker
	transport string
	batch     int32
	interval  time.Duration
	logger    *logging.Logger
}

func NewDeliverer(source outboxSource, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		source:    source,
		handler:   handler,
		transport: "outbox",
		batch:     defaultDeliveryBatch,
		interval:  defaultDeliveryInterval,
		logger:    logger,
	}
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

// WithTracker records published entries under the transport name.
func (d *Deliverer) WithTracker(tracker deliveryTracker, transport string) *Deliverer {
	d.tracker = tracker
	if transport != "" {
		d.transport = transport
	}
	return d
}

// Start blocks until ctx is done.
func (d *Deliverer) Start(ctx context.Context) {
	if d.source == nil || d.handler == nil {
		return
	}
	d.logger.Info("outbox deliverer started", "transport", d.transport, "interval", d.interval)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox deliverer stopped", "transport", d.transport)
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *Deliverer) drain(ctx context.Context) {
	entries, err := d.source.FetchPending(ctx, d.batch)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return
	}
	var sent, failed int
	for _, entry := range entries {
		if err := d.publish(ctx, entry); err != nil {
			failed++
			d.logger.Error("outbox publish failed", "error", err, "event_id", entry.ID, "type", entry.Type, "aggregate_id", entry.AggregateID)
			continue
		}
		sent++
		if _, err := d.source.MarkDelivered(ctx, entry.ID); err != nil {
			d.logger.Error("outbox mark delivered failed", "error", err, "event_id", entry.ID)
		}
	}
	if len(entries) > 0 {
		d.logger.Debug("outbox drained", "transport", d.transport, "sent", sent, "failed", failed)
	}
}

func (d *Deliverer) publish(ctx context.Context, entry OutboxEntry) error {
	key := entry.ID.String()
	if d.tracker != nil {
		seen, err := d.tracker.AlreadyProcessed(ctx, d.transport, key)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	if err := d.handler.Handle(ctx, entry); err != nil {
		return err
	}
	if d.tracker != nil {
		if _, err := d.tracker.MarkProcessed(ctx, d.transport, key); err != nil {
			d.logger.Warn("outbox publish not recorded", "error", err, "event_id", entry.ID)
		}
	}
	return nil
}
