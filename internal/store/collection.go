// Package store provides the mock persistence collections (bookings,
// mentors, resources, services). Every collection exposes List and Create;
// Create assigns a generated id.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Collection names.
const (
	Bookings  = "bookings"
	Mentors   = "mentors"
	Resources = "resources"
	Services  = "services"
)

// Collection is a list/create store for one record type.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, record T) (T, error)
}

// IDSetter returns a copy of record carrying id.
type IDSetter[T any] func(record T, id string) T

// MemoryCollection keeps records in process memory. Instances are
// constructed explicitly and injected; there is no package-level state.
type MemoryCollection[T any] struct {
	mu      sync.RWMutex
	name    string
	records []T
	setID   IDSetter[T]
	newID   func() string
}

// NewMemoryCollection seeds a collection with the given records.
func NewMemoryCollection[T any](name string, setID IDSetter[T], seed ...T) *MemoryCollection[T] {
	if setID == nil {
		panic("store: id setter required")
	}
	records := make([]T, len(seed))
	copy(records, seed)
	return &MemoryCollection[T]{
		name:    name,
		records: records,
		setID:   setID,
		newID:   uuid.NewString,
	}
}

// Name returns the collection name.
func (c *MemoryCollection[T]) Name() string {
	return c.name
}

// List returns a snapshot of all records in insertion order.
func (c *MemoryCollection[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.records))
	copy(out, c.records)
	return out, nil
}

// Create appends record with a freshly generated id.
func (c *MemoryCollection[T]) Create(ctx context.Context, record T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	record = c.setID(record, c.newID())

	c.mu.Lock()
	c.records = append(c.records, record)
	c.mu.Unlock()

	return record, nil
}
