package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// Handler serves GET /api/dashboard?mentor=<id>.
type Handler struct {
	service *Service
	user    User
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, user: MockUser(), logger: logger}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Build(r.Context(), h.user, r.URL.Query().Get("mentor"))
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		h.logger.Error("failed to build dashboard", "user_id", h.user.ID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": LoadErrorMessage})
		return
	}
	_ = json.NewEncoder(w).Encode(d)
}
