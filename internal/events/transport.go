package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/segmentio/kafka-go"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// Transport names accepted by EVENTS_TRANSPORT.
const (
	TransportNone  = "none"
	TransportSQS   = "sqs"
	TransportKafka = "kafka"
)

// SQSAPI is the part of the SQS client the publisher needs.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends each outbox entry as one SQS message.
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
	logger   *logging.Logger
}

func NewSQSPublisher(client SQSAPI, queueURL string, logger *logging.Logger) *SQSPublisher {
	if client == nil {
		panic("events: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("events: SQS queueURL cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SQSPublisher{client: client, queueURL: queueURL, logger: logger}
}

func (p *SQSPublisher) Handle(ctx context.Context, entry OutboxEntry) error {
	env, err := NewEnvelope(entry)
	if err != nil {
		return err
	}
	body, err := env.Marshal()
	if err != nil {
		return err
	}
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(env.EventType)},
		},
	}
	if strings.HasSuffix(p.queueURL, ".fifo") {
		input.MessageGroupId = aws.String(env.Aggregate)
		input.MessageDeduplicationId = aws.String(env.EventID.String())
	}
	out, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("events: failed to send SQS message: %w", err)
	}
	p.logger.Debug("event published to sqs", "event_id", env.EventID, "message_id", aws.ToString(out.MessageId))
	return nil
}

// KafkaWriter is the part of kafka.Writer the publisher needs.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a synchronous writer so a failed publish leaves the
// entry pending.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// KafkaPublisher writes each outbox entry to a topic keyed by aggregate so a
// booking's events stay ordered.
type KafkaPublisher struct {
	writer KafkaWriter
	logger *logging.Logger
}

func NewKafkaPublisher(writer KafkaWriter, logger *logging.Logger) *KafkaPublisher {
	if writer == nil {
		panic("events: kafka writer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) Handle(ctx context.Context, entry OutboxEntry) error {
	env, err := NewEnvelope(entry)
	if err != nil {
		return err
	}
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(env.Aggregate),
		Value: data,
		Time:  entry.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID.String())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: kafka write: %w", err)
	}
	p.logger.Debug("event published to kafka", "event_id", env.EventID)
	return nil
}

// Close releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
