package catalog

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable is returned when the backing source cannot be reached.
var ErrUnavailable = errors.New("catalog: services unavailable")

// LoadErrorMessage is shown when the service step cannot load its options.
const LoadErrorMessage = "Failed to load services. Please try again later."

// Service is an immutable bookable catalog entry. Price is in whole rupees.
type Service struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Icon        string   `json:"icon"`
	Benefits    []string `json:"benefits"`
}

// Validate checks the fields required for a catalog entry.
func (s Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("catalog: service name is required")
	}
	if s.Price < 0 {
		return errors.New("catalog: service price must not be negative")
	}
	return nil
}

// WithID returns s carrying id.
func WithID(s Service, id string) Service {
	s.ID = id
	return s
}

// Source supplies the list of bookable services.
type Source interface {
	ListServices(ctx context.Context) ([]Service, error)
}

// Find looks up a service by id.
func Find(services []Service, id string) (Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}
