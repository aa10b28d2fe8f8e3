package mentors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	httpmiddleware "github.com/mentoverse/mentoverse-platform/internal/http/middleware"
	"github.com/mentoverse/mentoverse-platform/internal/store"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

const (
	dateLayout     = "2006-01-02"
	maxUploadBytes = 5 << 20
)

// Handler serves mentor availability and onboarding endpoints.
type Handler struct {
	directory    Directory
	availability *Availability
	apps         ApplicationRepository
	images       *ImageStore
	mentors      store.Collection[Mentor]
	listener     ApplicationListener
	logger       *logging.Logger
	now          func() time.Time
}

// ApplicationListener is told about every stored application.
type ApplicationListener interface {
	ApplicationReceived(ctx context.Context, app Application) error
}

// WithApplicationListener attaches a listener, e.g. operator email and the
// outbox. Listener failures are logged and do not fail the submission.
func (h *Handler) WithApplicationListener(l ApplicationListener) *Handler {
	h.listener = l
	return h
}

// NewHandler wires the mentor endpoints. images may be nil.
func NewHandler(directory Directory, availability *Availability, apps ApplicationRepository, images *ImageStore, mentors store.Collection[Mentor], logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		directory:    directory,
		availability: availability,
		apps:         apps,
		images:       images,
		mentors:      mentors,
		logger:       logger,
		now:          time.Now,
	}
}

type availabilityResponse struct {
	MentorID string   `json:"mentorId"`
	Dates    []string `json:"dates,omitempty"`
	Date     string   `json:"date,omitempty"`
	Slots    []string `json:"slots,omitempty"`
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (Mentor, bool) {
	id := chi.URLParam(r, "mentorID")
	m, ok, err := h.directory.FindMentorByID(r.Context(), id)
	if err != nil {
		h.logger.Error("mentor lookup failed", "mentor_id", id, "error", err)
		writeError(w, http.StatusServiceUnavailable, LoadErrorMessage)
		return Mentor{}, false
	}
	if !ok {
		http.Error(w, "mentor not found", http.StatusNotFound)
		return Mentor{}, false
	}
	return m, true
}

// GetAvailableDates handles GET /api/mentors/{mentorID}/availability.
func (h *Handler) GetAvailableDates(w http.ResponseWriter, r *http.Request) {
	m, ok := h.lookup(w, r)
	if !ok {
		return
	}
	dates, err := h.availability.Dates(r.Context(), m.ID, h.now())
	if err != nil {
		h.logger.Warn("availability lookup aborted", "mentor_id", m.ID, "error", err)
		http.Error(w, "availability unavailable", http.StatusServiceUnavailable)
		return
	}
	resp := availabilityResponse{MentorID: m.ID, Dates: make([]string, 0, len(dates))}
	for _, d := range dates {
		resp.Dates = append(resp.Dates, d.Format(dateLayout))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAvailableSlots handles GET /api/mentors/{mentorID}/availability/{date}.
func (h *Handler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	m, ok := h.lookup(w, r)
	if !ok {
		return
	}
	date, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	slots, err := h.availability.Slots(r.Context(), date)
	if err != nil {
		http.Error(w, "availability unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{MentorID: m.ID, Date: date.Format(dateLayout), Slots: slots})
}

// SubmitApplication handles POST /api/mentors/applications. It accepts JSON
// or a multipart form with an optional "photo" file.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var app Application
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := h.decodeMultipart(r, &app); err != nil {
			h.logger.Warn("onboarding upload rejected", "error", err)
			writeError(w, http.StatusBadRequest, MsgSubmitFailed)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	app.ID = ""
	app.Status = StatusPending
	app.Normalize()
	if err := app.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusUnprocessableEntity, verr.Message)
			return
		}
		writeError(w, http.StatusBadRequest, MsgSubmitFailed)
		return
	}

	if err := h.apps.Create(r.Context(), &app); err != nil {
		h.logger.Error("failed to store mentor application", "error", err)
		writeError(w, http.StatusInternalServerError, MsgSubmitFailed)
		return
	}
	h.logger.Info("mentor application submitted", "application_id", app.ID, "email", app.Email)
	if h.listener != nil {
		if err := h.listener.ApplicationReceived(r.Context(), app); err != nil {
			h.logger.Error("mentor application listener failed", "application_id", app.ID, "error", err)
		}
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *Handler) decodeMultipart(r *http.Request, app *Application) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return err
	}
	form := r.MultipartForm
	get := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	app.Name = get("name")
	app.Email = get("email")
	app.Phone = get("phone")
	app.Title = get("title")
	app.Company = get("company")
	app.Bio = get("bio")
	app.Experience = get("experience")
	app.Education = get("education")
	app.LinkedIn = get("linkedIn")
	app.Location = get("location")
	app.Expertise = form.Value["expertise"]
	app.Availability = form.Value["availability"]
	if rate := get("hourlyRate"); rate != "" {
		n, err := strconv.ParseInt(rate, 10, 64)
		if err != nil {
			return err
		}
		app.HourlyRate = n
	}

	files := form.File["photo"]
	if len(files) == 0 || !h.images.Enabled() {
		return nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	ref, err := h.images.Upload(r.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return err
	}
	app.ImageRef = ref
	return nil
}

// ListApplications handles GET /admin/mentors/applications.
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	status := ApplicationStatus(r.URL.Query().Get("status"))
	apps, err := h.apps.List(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list mentor applications", "error", err)
		http.Error(w, "failed to list applications", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps, "count": len(apps)})
}

// ApproveApplication handles POST /admin/mentors/applications/{applicationID}/approve.
// The approved applicant is added to the mentor directory.
func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "applicationID")
	app, err := h.apps.Get(r.Context(), id)
	if errors.Is(err, ErrApplicationNotFound) {
		http.Error(w, "application not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load mentor application", "application_id", id, "error", err)
		http.Error(w, "failed to load application", http.StatusInternalServerError)
		return
	}
	if app.Status != StatusPending {
		http.Error(w, ErrAlreadyReviewed.Error(), http.StatusConflict)
		return
	}

	mentor, err := h.mentors.Create(r.Context(), app.ToMentor())
	if err != nil {
		h.logger.Error("failed to create mentor", "application_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create mentor")
		return
	}
	if err := h.apps.UpdateStatus(r.Context(), id, StatusApproved); err != nil {
		h.logger.Error("failed to mark application approved", "application_id", id, "error", err)
		http.Error(w, "failed to update application", http.StatusInternalServerError)
		return
	}
	approver := "unknown"
	if claims, ok := httpmiddleware.AdminClaimsFromContext(r.Context()); ok && claims.Subject != "" {
		approver = claims.Subject
	}
	h.logger.Info("mentor application approved", "application_id", id, "mentor_id", mentor.ID, "approved_by", approver)
	writeJSON(w, http.StatusCreated, mentor)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
