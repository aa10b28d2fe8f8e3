package bootstrap

import (
	"errors"
	"fmt"

	appconfig "github.com/mentoverse/mentoverse-platform/internal/config"
	"github.com/mentoverse/mentoverse-platform/internal/events"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// ErrTransportMisconfigured is returned when EVENTS_TRANSPORT names a
// transport whose settings are missing.
var ErrTransportMisconfigured = errors.New("bootstrap: events transport misconfigured")

// EventPublisher is the outbox handler plus a release func.
type EventPublisher struct {
	Handler   events.DeliveryHandler
	Transport string
	Close     func() error
}

// BuildEventPublisher selects the outbox transport. With "none" the Handler
// is nil and the outbox only accumulates rows.
func BuildEventPublisher(cfg *appconfig.Config, clients AWSClients, logger *logging.Logger) (EventPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() error { return nil }

	switch cfg.EventsTransport {
	case "", events.TransportNone:
		return EventPublisher{Transport: events.TransportNone, Close: noop}, nil
	case events.TransportSQS:
		if clients.SQS == nil || cfg.EventsQueueURL == "" {
			return EventPublisher{}, fmt.Errorf("%w: sqs needs EVENTS_QUEUE_URL", ErrTransportMisconfigured)
		}
		logger.Info("outbox publishing to sqs", "queue_url", cfg.EventsQueueURL)
		return EventPublisher{
			Handler:   events.NewSQSPublisher(clients.SQS, cfg.EventsQueueURL, logger),
			Transport: events.TransportSQS,
			Close:     noop,
		}, nil
	case events.TransportKafka:
		if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopic == "" {
			return EventPublisher{}, fmt.Errorf("%w: kafka needs KAFKA_BROKERS and KAFKA_TOPIC", ErrTransportMisconfigured)
		}
		logger.Info("outbox publishing to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		pub := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic), logger)
		return EventPublisher{Handler: pub, Transport: events.TransportKafka, Close: pub.Close}, nil
	default:
		return EventPublisher{}, fmt.Errorf("%w: unknown transport %q", ErrTransportMisconfigured, cfg.EventsTransport)
	}
}
