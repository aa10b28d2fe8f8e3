package events

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProcessedStore remembers which outbox entries a transport has published,
// keyed by transport name and entry id. The Deliverer consults it so a crash
// between publish and MarkDelivered does not publish twice.
type ProcessedStore struct {
	db rowQuerier
}

func NewProcessedStore(pool *pgxpool.Pool) *ProcessedStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return &ProcessedStore{db: pool}
}

func newProcessedStore(db rowQuerier) *ProcessedStore {
	return &ProcessedStore{db: db}
}

// AlreadyProcessed reports whether transport already published eventID.
func (s *ProcessedStore) AlreadyProcessed(ctx context.Context, transport, eventID string) (bool, error) {
	var published bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_events WHERE provider = $1 AND event_id = $2)`,
		transport, eventID,
	).Scan(&published)
	if err != nil {
		return false, fmt.Errorf("events: lookup published %s/%s: %w", transport, eventID, err)
	}
	return published, nil
}

// MarkProcessed records a publish. The first caller for an id gets true.
func (s *ProcessedStore) MarkProcessed(ctx context.Context, transport, eventID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO processed_events (provider, event_id, processed_at)
		VALUES ($1, $2, now())
		ON CONFLICT (provider, event_id) DO NOTHING
	`, transport, eventID)
	if err != nil {
		return false, fmt.Errorf("events: record published %s/%s: %w", transport, eventID, err)
	}
	return tag.RowsAffected() == 1, nil
}
