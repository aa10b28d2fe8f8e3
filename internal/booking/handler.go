package booking

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mentoverse/mentoverse-platform/internal/catalog"
	"github.com/mentoverse/mentoverse-platform/internal/mentors"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

const maxNotificationBytes = 64 << 10

// Handler exposes wizard sessions over HTTP.
type Handler struct {
	manager *Manager
	logger  *logging.Logger
}

// NewHandler creates a wizard handler.
func NewHandler(manager *Manager, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{manager: manager, logger: logger}
}

// Routes returns the session routes, mounted at /api/wizard/sessions.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.Start)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Discard)
		r.Post("/restart", h.Restart)
		r.Post("/service", h.SelectService)
		r.Post("/mentor", h.SelectMentor)
		r.Post("/date", h.SelectDate)
		r.Post("/time", h.SelectTime)
		r.Patch("/contact", h.SetContact)
		r.Post("/payment-method", h.SetPaymentMethod)
		r.Post("/scheduling", h.ReceiveScheduling)
		r.Get("/scheduling/ws", h.SchedulingRelay)
		r.Post("/continue", h.Continue)
		r.Post("/back", h.Back)
		r.Post("/submit", h.Submit)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
	View  *View  `json:"session,omitempty"`
}

// Start handles POST /api/wizard/sessions?service=&mentor=&flow=.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var flow Flow
	if raw := q.Get("flow"); raw != "" {
		parsed, err := ParseFlow(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		flow = parsed
	}
	view, err := h.manager.Start(r.Context(), flow, q.Get("service"), q.Get("mentor"))
	if err != nil {
		h.logger.Error("failed to start wizard session", "error", err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.manager.Get(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, view, err)
}

func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Discard(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.logger.Warn("failed to discard session", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	view, err := h.manager.Restart(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, view, err)
}

type idRequest struct {
	ID string `json:"id"`
}

func (h *Handler) SelectService(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.manager.SelectService(r.Context(), chi.URLParam(r, "sessionID"), req.ID)
	h.respond(w, view, err)
}

func (h *Handler) SelectMentor(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.manager.SelectMentor(r.Context(), chi.URLParam(r, "sessionID"), req.ID)
	h.respond(w, view, err)
}

func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if !decode(w, r, &req) {
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	view, err := h.manager.SelectDate(r.Context(), chi.URLParam(r, "sessionID"), date)
	h.respond(w, view, err)
}

func (h *Handler) SelectTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time string `json:"time"`
	}
	if !decode(w, r, &req) {
		return
	}
	view, err := h.manager.SelectTime(r.Context(), chi.URLParam(r, "sessionID"), req.Time)
	h.respond(w, view, err)
}

// SetContact handles PATCH with any subset of name, email, phone, message.
func (h *Handler) SetContact(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if !decode(w, r, &fields) {
		return
	}
	view, err := h.manager.SetContact(r.Context(), chi.URLParam(r, "sessionID"), fields)
	h.respond(w, view, err)
}

func (h *Handler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method PaymentMethod `json:"method"`
	}
	if !decode(w, r, &req) {
		return
	}
	view, err := h.manager.SetPaymentMethod(r.Context(), chi.URLParam(r, "sessionID"), req.Method)
	h.respond(w, view, err)
}

// ReceiveScheduling accepts a widget notification relayed by the browser.
func (h *Handler) ReceiveScheduling(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	n, _, err := ParseSchedulingNotification(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, applied, err := h.manager.ReceiveScheduling(r.Context(), chi.URLParam(r, "sessionID"), n)
	if err == nil && !applied {
		h.logger.Debug("scheduling notification ignored", "event", n.Event)
		writeJSON(w, http.StatusAccepted, view)
		return
	}
	h.respond(w, view, err)
}

func (h *Handler) Continue(w http.ResponseWriter, r *http.Request) {
	view, err := h.manager.Continue(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, view, err)
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	view, err := h.manager.Back(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, view, err)
}

// Submit handles the payment step. Without a payment method nothing happens
// and the unchanged session is returned.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	view, err := h.manager.Submit(r.Context(), chi.URLParam(r, "sessionID"))
	if errors.Is(err, ErrSubmitFailed) {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: SubmitErrorMessage, View: &view})
		return
	}
	h.respond(w, view, err)
}

func (h *Handler) respond(w http.ResponseWriter, view View, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, view)
		return
	}
	status := statusFor(err)
	if status == http.StatusNotFound {
		http.Error(w, err.Error(), status)
		return
	}
	msg := err.Error()
	switch {
	case errors.Is(err, catalog.ErrUnavailable):
		msg = catalog.LoadErrorMessage
	case errors.Is(err, mentors.ErrUnavailable):
		msg = mentors.LoadErrorMessage
	}
	writeJSON(w, status, errorResponse{Error: msg, View: &view})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrUnavailable), errors.Is(err, mentors.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrStepBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrWrongStep), errors.Is(err, ErrTerminal),
		errors.Is(err, ErrSubmitting), errors.Is(err, ErrStaleSubmission):
		return http.StatusConflict
	case errors.Is(err, ErrUnknownService), errors.Is(err, ErrUnknownMentor),
		errors.Is(err, ErrNoExternalScheduling), errors.Is(err, ErrInvalidSlot),
		errors.Is(err, ErrInvalidPaymentMethod), errors.Is(err, ErrInvalidField),
		errors.Is(err, ErrInvalidNotification):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
