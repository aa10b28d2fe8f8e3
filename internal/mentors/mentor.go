package mentors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mentoverse/mentoverse-platform/internal/store"
)

var (
	// ErrUnavailable is returned when the directory cannot be reached.
	ErrUnavailable = errors.New("mentors: directory unavailable")
	// ErrMentorNotFound is returned for unknown mentor ids.
	ErrMentorNotFound = errors.New("mentors: mentor not found")
)

// LoadErrorMessage is shown when the mentor step cannot load its options.
const LoadErrorMessage = "Failed to load mentors. Please try again later."

// Mentor is a directory entry. It does not change during a booking session.
type Mentor struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Title                 string   `json:"title"`
	Company               string   `json:"company"`
	Expertise             []string `json:"expertise"`
	Bio                   string   `json:"bio"`
	ImageRef              string   `json:"image"`
	HourlyRate            int64    `json:"hourlyRate"`
	Rating                float64  `json:"rating"`
	ExternalSchedulingURL string   `json:"calendlyUrl,omitempty"`
}

// CanScheduleExternally reports whether the mentor has a scheduling widget.
func (m Mentor) CanScheduleExternally() bool {
	return strings.TrimSpace(m.ExternalSchedulingURL) != ""
}

// Validate checks the fields a directory entry needs.
func (m Mentor) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("mentors: name is required")
	}
	if m.HourlyRate < 0 {
		return errors.New("mentors: hourly rate must not be negative")
	}
	if m.Rating < 0 || m.Rating > 5 {
		return errors.New("mentors: rating must be between 0 and 5")
	}
	return nil
}

// WithID returns m carrying id.
func WithID(m Mentor, id string) Mentor {
	m.ID = id
	return m
}

// Directory supplies mentor records.
type Directory interface {
	ListMentors(ctx context.Context) ([]Mentor, error)
	FindMentorByID(ctx context.Context, id string) (Mentor, bool, error)
}

// StoreDirectory serves mentors from the mentors collection.
type StoreDirectory struct {
	coll store.Collection[Mentor]
}

// NewStoreDirectory wraps a mentors collection.
func NewStoreDirectory(coll store.Collection[Mentor]) *StoreDirectory {
	return &StoreDirectory{coll: coll}
}

// ListMentors implements Directory.
func (d *StoreDirectory) ListMentors(ctx context.Context) ([]Mentor, error) {
	mentors, err := d.coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return mentors, nil
}

// FindMentorByID implements Directory with a linear scan.
func (d *StoreDirectory) FindMentorByID(ctx context.Context, id string) (Mentor, bool, error) {
	mentors, err := d.ListMentors(ctx)
	if err != nil {
		return Mentor{}, false, err
	}
	m, ok := Find(mentors, id)
	return m, ok, nil
}

// Find looks up a mentor by id.
func Find(mentors []Mentor, id string) (Mentor, bool) {
	for _, m := range mentors {
		if m.ID == id {
			return m, true
		}
	}
	return Mentor{}, false
}
