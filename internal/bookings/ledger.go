package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mentoverse/mentoverse-platform/internal/booking"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// ErrConfirmationNotFound indicates the confirmation id is not in the ledger.
var ErrConfirmationNotFound = errors.New("bookings: confirmation not found")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// LedgerRecord is one confirmation as stored in DynamoDB.
type LedgerRecord struct {
	ConfirmationID string `dynamodbav:"confirmationId" json:"confirmationId"`
	Reference      string `dynamodbav:"reference" json:"reference"`
	SessionID      string `dynamodbav:"sessionId" json:"sessionId"`
	Flow           string `dynamodbav:"flow" json:"flow"`
	ServiceID      string `dynamodbav:"serviceId" json:"serviceId"`
	ServiceName    string `dynamodbav:"serviceName" json:"serviceName"`
	MentorID       string `dynamodbav:"mentorId" json:"mentorId"`
	MentorName     string `dynamodbav:"mentorName" json:"mentorName"`
	AmountPaise    int64  `dynamodbav:"amountPaise" json:"amountPaise"`
	Amount         string `dynamodbav:"amount" json:"amount"`
	ScheduledDate  string `dynamodbav:"scheduledDate,omitempty" json:"scheduledDate,omitempty"`
	ScheduledTime  string `dynamodbav:"scheduledTime,omitempty" json:"scheduledTime,omitempty"`
	CustomerName   string `dynamodbav:"customerName" json:"customerName"`
	CustomerEmail  string `dynamodbav:"customerEmail" json:"customerEmail"`
	PaymentMethod  string `dynamodbav:"paymentMethod" json:"paymentMethod"`
	PaymentURL     string `dynamodbav:"paymentUrl,omitempty" json:"paymentUrl,omitempty"`
	ConfirmedAt    string `dynamodbav:"confirmedAt" json:"confirmedAt"`
}

// NewLedgerRecord flattens a confirmation.
func NewLedgerRecord(c booking.Confirmation) LedgerRecord {
	return LedgerRecord{
		ConfirmationID: c.ID,
		Reference:      c.Reference,
		SessionID:      c.SessionID,
		Flow:           string(c.Flow),
		ServiceID:      c.Service.ID,
		ServiceName:    c.Service.Name,
		MentorID:       c.Mentor.ID,
		MentorName:     c.Mentor.Name,
		AmountPaise:    c.AmountPaid,
		Amount:         booking.FormatINR(c.AmountPaid),
		ScheduledDate:  c.ScheduledDate,
		ScheduledTime:  c.ScheduledTime,
		CustomerName:   c.Contact.Name,
		CustomerEmail:  c.Contact.Email,
		PaymentMethod:  string(c.PaymentMethod),
		PaymentURL:     c.PaymentURL,
		ConfirmedAt:    c.ConfirmedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Ledger persists confirmations keyed by confirmation id. References are
// short display codes and can repeat, so they are stored but never keyed on.
type Ledger struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewLedger builds a ledger backed by the provided DynamoDB client.
func NewLedger(client dynamoAPI, tableName string, logger *logging.Logger) *Ledger {
	if client == nil {
		panic("bookings: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("bookings: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Ledger{client: client, tableName: tableName, logger: logger}
}

// Put stores rec. A confirmation is written at most once.
func (l *Ledger) Put(ctx context.Context, rec LedgerRecord) error {
	if rec.ConfirmationID == "" {
		return errors.New("bookings: confirmation id required")
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("bookings: failed to marshal confirmation: %w", err)
	}
	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(l.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(confirmationId)"),
	})
	if err != nil {
		return fmt.Errorf("bookings: failed to persist confirmation: %w", err)
	}
	return nil
}

// Get loads a confirmation by id.
func (l *Ledger) Get(ctx context.Context, confirmationID string) (*LedgerRecord, error) {
	if confirmationID == "" {
		return nil, errors.New("bookings: confirmation id required")
	}
	out, err := l.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"confirmationId": &types.AttributeValueMemberS{Value: confirmationID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bookings: failed to fetch confirmation: %w", err)
	}
	if out.Item == nil {
		return nil, ErrConfirmationNotFound
	}
	var rec LedgerRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("bookings: failed to decode confirmation: %w", err)
	}
	return &rec, nil
}

// Name implements booking.ConfirmationSink.
func (l *Ledger) Name() string { return "ledger" }

// HandleConfirmation implements booking.ConfirmationSink.
func (l *Ledger) HandleConfirmation(ctx context.Context, c *booking.Confirmation) error {
	return l.Put(ctx, NewLedgerRecord(*c))
}
