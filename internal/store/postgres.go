package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresCollection stores records as JSONB documents in the shared
// documents table, partitioned by collection name.
type PostgresCollection[T any] struct {
	db    pgxQuerier
	name  string
	setID IDSetter[T]
}

// NewPostgresCollection binds a collection to a pgx pool.
func NewPostgresCollection[T any](pool *pgxpool.Pool, name string, setID IDSetter[T]) *PostgresCollection[T] {
	if pool == nil {
		panic("store: pgx pool required")
	}
	return newPostgresCollection(pool, name, setID)
}

func newPostgresCollection[T any](db pgxQuerier, name string, setID IDSetter[T]) *PostgresCollection[T] {
	if setID == nil {
		panic("store: id setter required")
	}
	return &PostgresCollection[T]{db: db, name: name, setID: setID}
}

// List returns every document of the collection ordered by creation time.
func (c *PostgresCollection[T]) List(ctx context.Context) ([]T, error) {
	query := `
		SELECT body
		FROM documents
		WHERE collection = $1
		ORDER BY created_at, id
	`
	rows, err := c.db.Query(ctx, query, c.name)
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", c.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", c.name, err)
		}
		var record T
		if err := json.Unmarshal(body, &record); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", c.name, err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// Create inserts record under a new id and returns the stored copy.
func (c *PostgresCollection[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	id := uuid.New()
	record = c.setID(record, id.String())
	body, err := json.Marshal(record)
	if err != nil {
		return zero, fmt.Errorf("store: encode %s: %w", c.name, err)
	}
	query := `
		INSERT INTO documents (id, collection, body)
		VALUES ($1, $2, $3)
	`
	if _, err := c.db.Exec(ctx, query, id, c.name, body); err != nil {
		return zero, fmt.Errorf("store: insert %s: %w", c.name, err)
	}
	return record, nil
}

// SeedIfEmpty writes fixtures when the collection has no documents yet.
// Seeded records keep their own ids.
func (c *PostgresCollection[T]) SeedIfEmpty(ctx context.Context, idOf func(T) string, records []T) (int, error) {
	var count int
	if err := c.db.QueryRow(ctx, `SELECT count(*) FROM documents WHERE collection = $1`, c.name).Scan(&count); err != nil {
		return 0, fmt.Errorf("store: count %s: %w", c.name, err)
	}
	if count > 0 {
		return 0, nil
	}
	query := `
		INSERT INTO documents (id, collection, body)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`
	for _, record := range records {
		body, err := json.Marshal(record)
		if err != nil {
			return 0, fmt.Errorf("store: encode %s fixture: %w", c.name, err)
		}
		if _, err := c.db.Exec(ctx, query, seedID(c.name, idOf(record)), c.name, body); err != nil {
			return 0, fmt.Errorf("store: seed %s: %w", c.name, err)
		}
	}
	return len(records), nil
}

// seedID derives a stable document id for fixtures whose ids are not UUIDs.
func seedID(collection, id string) uuid.UUID {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mentoverse:"+collection+":"+id))
}
