package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

type confirmationReader interface {
	Get(ctx context.Context, confirmationID string) (*LedgerRecord, error)
}

// ConfirmationHandler serves GET /api/confirmations/{confirmationID}.
type ConfirmationHandler struct {
	ledger confirmationReader
	logger *logging.Logger
}

func NewConfirmationHandler(ledger confirmationReader, logger *logging.Logger) *ConfirmationHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ConfirmationHandler{ledger: ledger, logger: logger}
}

func (h *ConfirmationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "confirmationID")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "invalid confirmation id", http.StatusBadRequest)
		return
	}
	rec, err := h.ledger.Get(r.Context(), id)
	if errors.Is(err, ErrConfirmationNotFound) {
		http.Error(w, "confirmation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load confirmation", "confirmation_id", id, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch confirmation"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rec)
}
