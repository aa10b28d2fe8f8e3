package payments

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// EventPaymentCompleted is appended to the outbox when a fake checkout is paid.
const EventPaymentCompleted = "payment.completed.v1"

// PaymentCompletedV1 is the outbox payload for a completed payment.
type PaymentCompletedV1 struct {
	EventID     string    `json:"eventId"`
	BookingID   string    `json:"bookingId"`
	Reference   string    `json:"reference"`
	Provider    string    `json:"provider"`
	ProviderRef string    `json:"providerRef"`
	AmountPaise int64     `json:"amountPaise"`
	Method      string    `json:"method"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type outboxWriter interface {
	Insert(ctx context.Context, aggregateID string, eventType string, payload any) (uuid.UUID, error)
}

// FakePaymentsHandler serves a tiny page to "complete" fake checkouts.
// Only mount it when ALLOW_FAKE_PAYMENTS=true.
type FakePaymentsHandler struct {
	checkouts *FakeCheckoutService
	outbox    outboxWriter
	logger    *logging.Logger
}

// NewFakePaymentsHandler creates the handler. outbox may be nil.
func NewFakePaymentsHandler(checkouts *FakeCheckoutService, outbox outboxWriter, logger *logging.Logger) *FakePaymentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &FakePaymentsHandler{checkouts: checkouts, outbox: outbox, logger: logger}
}

// Routes is mounted at /payments/fake.
func (h *FakePaymentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{bookingID}", h.HandleCheckout)
	r.Post("/{bookingID}/complete", h.HandleComplete)
	r.Get("/{bookingID}/success", h.HandleSuccess)
	return r
}

var checkoutPage = template.Must(template.New("checkout").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Mentoverse Checkout</title>
    <style>
      body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Ubuntu,Cantarell,Noto Sans,sans-serif;max-width:680px;margin:40px auto;padding:0 16px;}
      .card{border:1px solid #e5e7eb;border-radius:12px;padding:18px;}
      .btn{display:inline-block;background:#4f46e5;color:#fff;padding:12px 16px;border-radius:10px;text-decoration:none;border:0;cursor:pointer;}
      .muted{color:#6b7280;font-size:14px;}
      code{background:#f3f4f6;padding:2px 6px;border-radius:6px;}
    </style>
  </head>
  <body>
    <h1>{{if .Paid}}Payment Completed{{else}}Mentoverse Checkout{{end}}</h1>
    <div class="card">
      <p><strong>{{.Description}}</strong></p>
      <p><strong>Amount:</strong> {{.Amount}} via {{.Method}}</p>
      {{if .Paid}}<p>Thanks, your session is paid.</p>{{else}}
      <p class="muted">This is a demo-only payment page (no real payment is processed).</p>
      <form method="POST" action="{{.CompleteURL}}">
        <button class="btn" type="submit">Pay now</button>
      </form>{{end}}
      <p class="muted">Booking reference: <code>{{.Reference}}</code></p>
    </div>
  </body>
</html>`))

type checkoutPageData struct {
	Reference   string
	Description string
	Amount      string
	Method      string
	Paid        bool
	CompleteURL string
}

func (h *FakePaymentsHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	h.render(w, r)
}

func (h *FakePaymentsHandler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	h.render(w, r)
}

func (h *FakePaymentsHandler) render(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := bookingIDParam(w, r)
	if !ok {
		return
	}
	c, found := h.checkouts.Checkout(bookingID)
	if !found {
		http.Error(w, "checkout not found", http.StatusNotFound)
		return
	}
	data := checkoutPageData{
		Reference:   c.Reference,
		Description: c.Description,
		Amount:      formatRupees(c.AmountPaise),
		Method:      strings.ToUpper(c.Method),
		Paid:        c.Paid,
		CompleteURL: "/payments/fake/" + url.PathEscape(c.BookingID) + "/complete",
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := checkoutPage.Execute(w, data); err != nil {
		h.logger.Error("failed to render fake checkout", "error", err, "booking_id", bookingID)
	}
}

func (h *FakePaymentsHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := bookingIDParam(w, r)
	if !ok {
		return
	}
	if err := h.completePayment(r.Context(), bookingID); err != nil {
		h.logger.Error("fake payment completion failed", "error", err, "booking_id", bookingID)
		http.Error(w, "failed to complete payment", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/payments/fake/"+url.PathEscape(bookingID)+"/success", http.StatusSeeOther)
}

func (h *FakePaymentsHandler) completePayment(ctx context.Context, bookingID string) error {
	c, changed, err := h.checkouts.MarkPaid(bookingID)
	if err != nil {
		return err
	}
	if !changed || h.outbox == nil {
		return nil
	}
	event := PaymentCompletedV1{
		EventID:     uuid.NewString(),
		BookingID:   c.BookingID,
		Reference:   c.Reference,
		Provider:    "fake",
		ProviderRef: "fake:" + c.BookingID,
		AmountPaise: c.AmountPaise,
		Method:      c.Method,
		OccurredAt:  c.PaidAt,
	}
	if _, err := h.outbox.Insert(ctx, c.BookingID, EventPaymentCompleted, event); err != nil {
		return fmt.Errorf("payments: fake enqueue outbox: %w", err)
	}
	return nil
}

func bookingIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "bookingID"))
	if raw == "" {
		http.Error(w, "missing booking id", http.StatusBadRequest)
		return "", false
	}
	return raw, true
}

// formatRupees renders paise as rupees with two decimals.
func formatRupees(paise int64) string {
	return fmt.Sprintf("₹%d.%02d", paise/100, paise%100)
}
