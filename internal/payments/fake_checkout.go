package payments

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// FakeCheckout is a checkout created by FakeCheckoutService.
type FakeCheckout struct {
	BookingID   string
	Reference   string
	AmountPaise int64
	Method      string
	Description string
	Paid        bool
	CreatedAt   time.Time
	PaidAt      time.Time
}

// FakeCheckoutService is a dev checkout provider that links to an internal
// page where the user can mark the payment complete. Gate it behind
// ALLOW_FAKE_PAYMENTS.
type FakeCheckoutService struct {
	publicBaseURL string
	logger        *logging.Logger

	mu        sync.RWMutex
	checkouts map[string]FakeCheckout
}

func NewFakeCheckoutService(publicBaseURL string, logger *logging.Logger) *FakeCheckoutService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FakeCheckoutService{
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
		logger:        logger,
		checkouts:     make(map[string]FakeCheckout),
	}
}

func (s *FakeCheckoutService) CreatePaymentLink(ctx context.Context, params CheckoutParams) (*CheckoutResponse, error) {
	_ = ctx
	if strings.TrimSpace(params.BookingID) == "" {
		return nil, fmt.Errorf("payments: fake checkout requires booking id")
	}
	if s.publicBaseURL == "" {
		return nil, fmt.Errorf("payments: fake checkout requires PUBLIC_BASE_URL")
	}
	if !isValidBaseURL(s.publicBaseURL) {
		return nil, fmt.Errorf("payments: fake checkout PUBLIC_BASE_URL must be an absolute http(s) URL")
	}

	s.mu.Lock()
	s.checkouts[params.BookingID] = FakeCheckout{
		BookingID:   params.BookingID,
		Reference:   params.Reference,
		AmountPaise: params.AmountPaise,
		Method:      stripeMethod(params.Method),
		Description: params.Description,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Unlock()

	checkoutURL := fmt.Sprintf("%s/payments/fake/%s", s.publicBaseURL, url.PathEscape(params.BookingID))
	return &CheckoutResponse{
		URL:        checkoutURL,
		ProviderID: "fake:" + params.BookingID,
	}, nil
}

// Checkout returns the checkout for a booking id.
func (s *FakeCheckoutService) Checkout(bookingID string) (FakeCheckout, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.checkouts[bookingID]
	return c, ok
}

// MarkPaid flags the checkout paid. It reports false if it was already paid.
func (s *FakeCheckoutService) MarkPaid(bookingID string) (FakeCheckout, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkouts[bookingID]
	if !ok {
		return FakeCheckout{}, false, fmt.Errorf("payments: fake checkout %q not found", bookingID)
	}
	if c.Paid {
		return c, false, nil
	}
	c.Paid = true
	c.PaidAt = time.Now().UTC()
	s.checkouts[bookingID] = c
	return c, true, nil
}

func isValidBaseURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
