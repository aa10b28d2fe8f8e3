package bookings

import (
	"context"
	"fmt"

	"github.com/mentoverse/mentoverse-platform/internal/store"
)

// Repository reads and writes booking records in the bookings collection.
type Repository struct {
	coll store.Collection[Booking]
}

// NewRepository wraps a bookings collection.
func NewRepository(coll store.Collection[Booking]) *Repository {
	if coll == nil {
		panic("bookings: collection required")
	}
	return &Repository{coll: coll}
}

// CreateConfirmed stores b as confirmed.
func (r *Repository) CreateConfirmed(ctx context.Context, b Booking) (Booking, error) {
	b.Status = StatusConfirmed
	if b.UserID == "" {
		b.UserID = DefaultUserID
	}
	if err := b.Validate(); err != nil {
		return Booking{}, err
	}
	created, err := r.coll.Create(ctx, b)
	if err != nil {
		return Booking{}, fmt.Errorf("bookings: insert confirmed: %w", err)
	}
	return created, nil
}

// ListForUser returns the user's bookings.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]Booking, error) {
	all, err := r.coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("bookings: list: %w", err)
	}
	var out []Booking
	for _, b := range all {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}
