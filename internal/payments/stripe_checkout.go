package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

var stripeTracer = otel.Tracer("mentoverse.internal.payments.stripe")

// StripeCheckoutService creates Stripe Checkout Sessions for bookings.
type StripeCheckoutService struct {
	secretKey  string
	successURL string
	cancelURL  string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *logging.Logger
	dryRun     bool
}

// NewStripeCheckoutService creates a new Stripe checkout service.
func NewStripeCheckoutService(secretKey, successURL, cancelURL string, logger *logging.Logger) *StripeCheckoutService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StripeCheckoutService{
		secretKey:  secretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
		baseURL:    "https://api.stripe.com",
		apiVersion: "2024-12-18.acacia",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the Stripe API base URL (for testing).
func (s *StripeCheckoutService) WithBaseURL(baseURL string) *StripeCheckoutService {
	if baseURL != "" {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
	return s
}

// WithDryRun returns fake URLs without calling Stripe.
func (s *StripeCheckoutService) WithDryRun(enabled bool) *StripeCheckoutService {
	s.dryRun = enabled
	return s
}

// CreatePaymentLink implements LinkCreator.
func (s *StripeCheckoutService) CreatePaymentLink(ctx context.Context, params CheckoutParams) (*CheckoutResponse, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.create_checkout_session", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("mentoverse.booking_id", params.BookingID),
		attribute.String("mentoverse.reference", params.Reference),
		attribute.Int64("mentoverse.amount_paise", params.AmountPaise),
		attribute.String("mentoverse.payment_method", params.Method),
	)

	if params.AmountPaise <= 0 {
		return nil, fmt.Errorf("payments: amount must be positive, got %d", params.AmountPaise)
	}
	if strings.TrimSpace(params.BookingID) == "" {
		return nil, fmt.Errorf("payments: stripe checkout requires booking id")
	}

	if s.dryRun {
		fakeID := "cs_dryrun_" + uuid.New().String()[:8]
		s.logger.Info("stripe dry run: skipping checkout session creation",
			"reference", params.Reference, "amount_paise", params.AmountPaise)
		return &CheckoutResponse{
			URL:        fmt.Sprintf("https://checkout.stripe.com/dry-run/%s", fakeID),
			ProviderID: fakeID,
		}, nil
	}

	successURL := params.SuccessURL
	if successURL == "" {
		successURL = s.successURL
	}
	cancelURL := params.CancelURL
	if cancelURL == "" {
		cancelURL = s.cancelURL
	}
	description := params.Description
	if strings.TrimSpace(description) == "" {
		description = "Mentoring session"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price_data][currency]", Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountPaise, 10))
	form.Set("line_items[0][price_data][product_data][name]", description)
	form.Set("line_items[0][quantity]", "1")
	form.Set("payment_method_types[0]", stripeMethod(params.Method))
	if successURL != "" {
		form.Set("success_url", successURL)
	}
	if cancelURL != "" {
		form.Set("cancel_url", cancelURL)
	}
	if email := strings.TrimSpace(params.CustomerEmail); email != "" {
		form.Set("customer_email", email)
	}
	form.Set("client_reference_id", params.BookingID)

	metadata := map[string]string{
		"booking_id":    params.BookingID,
		"reference":     params.Reference,
		"mentor_id":     params.MentorID,
		"service_id":    params.ServiceID,
		"scheduled_for": params.ScheduledFor,
	}
	for k, v := range metadata {
		if v == "" {
			continue
		}
		form.Set("metadata["+k+"]", v)
		form.Set("payment_intent_data[metadata]["+k+"]", v)
	}

	apiURL := s.baseURL + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payments: stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Stripe-Version", s.apiVersion)
	// References can repeat across bookings; the booking id cannot.
	req.Header.Set("Idempotency-Key", "booking-"+params.BookingID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: stripe http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("payments: stripe api status %d: %s", resp.StatusCode, readStripeError(resp.Body))
	}

	var parsed stripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("payments: stripe decode: %w", err)
	}
	if parsed.URL == "" {
		return nil, fmt.Errorf("payments: stripe response missing checkout url")
	}
	return &CheckoutResponse{URL: parsed.URL, ProviderID: parsed.ID}, nil
}

// Stripe calls UPI "upi"; everything else is a card.
func stripeMethod(method string) string {
	if strings.EqualFold(method, "upi") {
		return "upi"
	}
	return "card"
}

type stripeCheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// readStripeError extracts Stripe's error message, falling back to the raw body.
func readStripeError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "unknown error"
	}
	var parsed stripeErrorResponse
	if json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(data)
}
