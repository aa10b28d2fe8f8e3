package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStripeCheckoutService_CreatePaymentLink(t *testing.T) {
	var gotForm map[string][]string
	var gotIdempotency string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("expected path /v1/checkout/sessions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("expected auth header, got %q", got)
		}
		if r.Header.Get("Stripe-Version") == "" {
			t.Errorf("expected Stripe-Version header")
		}
		gotIdempotency = r.Header.Get("Idempotency-Key")
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":  "cs_test_abc123",
			"url": "https://checkout.stripe.com/pay/cs_test_abc123",
		})
	}))
	defer srv.Close()

	svc := NewStripeCheckoutService("sk_test_123", "https://success.example.com", "https://cancel.example.com", nil).
		WithBaseURL(srv.URL)

	resp, err := svc.CreatePaymentLink(context.Background(), CheckoutParams{
		BookingID:     "6f1c2e4a-booking",
		Reference:     "MV-123456",
		AmountPaise:   235882,
		Description:   "CV & Resume Review with Priya Sharma",
		Method:        "upi",
		CustomerEmail: "asha@example.com",
		MentorID:      "2",
		ServiceID:     "cv-resume-review",
		ScheduledFor:  "2025-06-15 10:00 AM",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.URL != "https://checkout.stripe.com/pay/cs_test_abc123" {
		t.Fatalf("unexpected URL: %s", resp.URL)
	}
	if resp.ProviderID != "cs_test_abc123" {
		t.Fatalf("unexpected provider ID: %s", resp.ProviderID)
	}
	if gotIdempotency != "booking-6f1c2e4a-booking" {
		t.Fatalf("unexpected idempotency key: %q", gotIdempotency)
	}

	assertFormValue(t, gotForm, "mode", "payment")
	assertFormValue(t, gotForm, "line_items[0][price_data][currency]", "inr")
	assertFormValue(t, gotForm, "line_items[0][price_data][unit_amount]", "235882")
	assertFormValue(t, gotForm, "line_items[0][price_data][product_data][name]", "CV & Resume Review with Priya Sharma")
	assertFormValue(t, gotForm, "line_items[0][quantity]", "1")
	assertFormValue(t, gotForm, "payment_method_types[0]", "upi")
	assertFormValue(t, gotForm, "success_url", "https://success.example.com")
	assertFormValue(t, gotForm, "cancel_url", "https://cancel.example.com")
	assertFormValue(t, gotForm, "customer_email", "asha@example.com")
	assertFormValue(t, gotForm, "client_reference_id", "6f1c2e4a-booking")
	assertFormValue(t, gotForm, "metadata[booking_id]", "6f1c2e4a-booking")
	assertFormValue(t, gotForm, "metadata[reference]", "MV-123456")
	assertFormValue(t, gotForm, "metadata[mentor_id]", "2")
	assertFormValue(t, gotForm, "payment_intent_data[metadata][service_id]", "cv-resume-review")
}

func TestStripeCheckoutService_CardIsDefaultMethod(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotForm = r.PostForm
		json.NewEncoder(w).Encode(map[string]string{"id": "cs_1", "url": "https://checkout.stripe.com/pay/cs_1"})
	}))
	defer srv.Close()

	svc := NewStripeCheckoutService("sk_test_123", "", "", nil).WithBaseURL(srv.URL)
	if _, err := svc.CreatePaymentLink(context.Background(), CheckoutParams{BookingID: "b-1", Reference: "MV-000001", AmountPaise: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFormValue(t, gotForm, "payment_method_types[0]", "card")
	assertFormValue(t, gotForm, "line_items[0][price_data][product_data][name]", "Mentoring session")
	if _, ok := gotForm["metadata[mentor_id]"]; ok {
		t.Fatal("expected empty metadata to be omitted")
	}
}

func TestStripeCheckoutService_DryRun(t *testing.T) {
	svc := NewStripeCheckoutService("sk_test_123", "", "", nil).WithDryRun(true)

	resp, err := svc.CreatePaymentLink(context.Background(), CheckoutParams{
		BookingID:   "b-1",
		Reference:   "MV-123456",
		AmountPaise: 5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(resp.ProviderID, "cs_dryrun_") {
		t.Fatalf("unexpected dry run provider id %q", resp.ProviderID)
	}
	if resp.URL == "" {
		t.Fatal("expected non-empty URL in dry run")
	}
}

func TestStripeCheckoutService_RejectsNonPositiveAmount(t *testing.T) {
	svc := NewStripeCheckoutService("sk_test_123", "", "", nil).WithDryRun(true)
	if _, err := svc.CreatePaymentLink(context.Background(), CheckoutParams{BookingID: "b-1", Reference: "MV-123456"}); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestStripeCheckoutService_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Invalid API key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	svc := NewStripeCheckoutService("sk_bad", "", "", nil).WithBaseURL(srv.URL)

	_, err := svc.CreatePaymentLink(context.Background(), CheckoutParams{
		BookingID:   "b-1",
		Reference:   "MV-123456",
		AmountPaise: 5000,
	})
	if err == nil {
		t.Fatal("expected error for bad API response")
	}
	if !strings.Contains(err.Error(), "Invalid API key") {
		t.Fatalf("expected stripe message in error, got %v", err)
	}
}

func TestStripeCheckoutService_SharedReferenceUsesDistinctKeys(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		json.NewEncoder(w).Encode(map[string]string{"id": "cs_x", "url": "https://checkout.stripe.com/pay/cs_x"})
	}))
	defer srv.Close()

	svc := NewStripeCheckoutService("sk_test_123", "", "", nil).WithBaseURL(srv.URL)
	for _, id := range []string{"booking-a", "booking-b"} {
		if _, err := svc.CreatePaymentLink(context.Background(), CheckoutParams{BookingID: id, Reference: "MV-123456", AmountPaise: 5000}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(keys) != 2 || keys[0] == keys[1] {
		t.Fatalf("expected distinct idempotency keys, got %v", keys)
	}
}

func TestStripeCheckoutService_RequiresBookingID(t *testing.T) {
	svc := NewStripeCheckoutService("sk_test_123", "", "", nil).WithDryRun(true)
	if _, err := svc.CreatePaymentLink(context.Background(), CheckoutParams{Reference: "MV-123456", AmountPaise: 5000}); err == nil {
		t.Fatal("expected error without booking id")
	}
}

func assertFormValue(t *testing.T, form map[string][]string, key, want string) {
	t.Helper()
	got := form[key]
	if len(got) == 0 {
		t.Errorf("form key %q not found", key)
		return
	}
	if got[0] != want {
		t.Errorf("form[%q] = %q, want %q", key, got[0], want)
	}
}
