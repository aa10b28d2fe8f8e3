package store

import (
	"encoding/json"
	"net/http"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// RequestObserver records the outcome of collection requests.
type RequestObserver interface {
	ObserveStoreRequest(collection, op, outcome string)
}

// Handler exposes one collection as GET (list) and POST (create).
type Handler[T any] struct {
	name     string
	coll     Collection[T]
	validate func(T) error
	logger   *logging.Logger
	observer RequestObserver
	filter   func(r *http.Request, records []T) []T
}

// NewHandler creates a collection handler. validate may be nil.
func NewHandler[T any](name string, coll Collection[T], validate func(T) error, logger *logging.Logger) *Handler[T] {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler[T]{name: name, coll: coll, validate: validate, logger: logger}
}

// WithObserver attaches request metrics.
func (h *Handler[T]) WithObserver(o RequestObserver) *Handler[T] {
	h.observer = o
	return h
}

// WithFilter narrows listed records using the request's query.
func (h *Handler[T]) WithFilter(f func(r *http.Request, records []T) []T) *Handler[T] {
	h.filter = f
	return h
}

// List handles GET /api/{collection}.
func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.coll.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list collection", "collection", h.name, "error", err)
		h.observe("list", "error")
		writeError(w, "Failed to fetch "+h.name)
		return
	}
	if h.filter != nil {
		records = h.filter(r, records)
	}
	h.observe("list", "ok")
	writeJSON(w, http.StatusOK, records)
}

// Create handles POST /api/{collection}. Any failure, including a malformed
// body, maps to the same generic 500 response.
func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var record T
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.logger.Warn("failed to decode record", "collection", h.name, "error", err)
		h.observe("create", "error")
		writeError(w, "Failed to create "+singular(h.name))
		return
	}
	if h.validate != nil {
		if err := h.validate(record); err != nil {
			h.logger.Warn("record rejected", "collection", h.name, "error", err)
			h.observe("create", "error")
			writeError(w, "Failed to create "+singular(h.name))
			return
		}
	}

	created, err := h.coll.Create(r.Context(), record)
	if err != nil {
		h.logger.Error("failed to create record", "collection", h.name, "error", err)
		h.observe("create", "error")
		writeError(w, "Failed to create "+singular(h.name))
		return
	}
	h.observe("create", "ok")
	h.logger.Info("record created", "collection", h.name)
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler[T]) observe(op, outcome string) {
	if h.observer != nil {
		h.observer.ObserveStoreRequest(h.name, op, outcome)
	}
}

func singular(name string) string {
	switch name {
	case Bookings:
		return "booking"
	case Mentors:
		return "mentor"
	case Resources:
		return "resource"
	case Services:
		return "service"
	default:
		return name
	}
}

func writeError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
