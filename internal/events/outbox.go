package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxEntry is one stored event. AggregateID is the booking reference or
// mentor application id the event belongs to.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	Type        string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

const (
	insertOutboxSQL = `INSERT INTO outbox (id, aggregate_id, type, payload) VALUES ($1, $2, $3, $4)`

	pendingOutboxSQL = `SELECT id, aggregate_id, type, payload, created_at
FROM outbox
WHERE delivered_at IS NULL
ORDER BY created_at
LIMIT $1`

	markDeliveredSQL = `UPDATE outbox SET delivered_at = now() WHERE id = $1 AND delivered_at IS NULL`
)

type outboxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OutboxStore writes events next to the data they describe and hands them
// to the Deliverer.
type OutboxStore struct {
	db outboxDB
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return newOutboxStore(pool)
}

func newOutboxStore(db outboxDB) *OutboxStore {
	return &OutboxStore{db: db}
}

// Insert stores payload as JSON under eventType and returns the event id.
func (s *OutboxStore) Insert(ctx context.Context, aggregateID string, eventType string, payload any) (uuid.UUID, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("events: encode %s: %w", eventType, err)
	}
	id := uuid.New()
	if _, err := s.db.Exec(ctx, insertOutboxSQL, id, aggregateID, eventType, body); err != nil {
		return uuid.Nil, fmt.Errorf("events: append %s for %s: %w", eventType, aggregateID, err)
	}
	return id, nil
}

// FetchPending returns up to limit undelivered events, oldest first.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error) {
	rows, err := s.db.Query(ctx, pendingOutboxSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("events: load pending: %w", err)
	}
	entries, err := pgx.CollectRows(rows, scanOutboxEntry)
	if err != nil {
		return nil, fmt.Errorf("events: load pending: %w", err)
	}
	return entries, nil
}

func scanOutboxEntry(row pgx.CollectableRow) (OutboxEntry, error) {
	var (
		e    OutboxEntry
		body []byte
	)
	if err := row.Scan(&e.ID, &e.AggregateID, &e.Type, &body, &e.CreatedAt); err != nil {
		return OutboxEntry{}, err
	}
	e.Payload = json.RawMessage(append([]byte(nil), body...))
	return e, nil
}

// MarkDelivered stamps the event. It reports false when another deliverer
// got there first.
func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, markDeliveredSQL, id)
	if err != nil {
		return false, fmt.Errorf("events: mark %s delivered: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}
