package payments

import (
	"strings"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// Provider names a checkout backend.
type Provider string

const (
	ProviderNone   Provider = "none"
	ProviderStripe Provider = "stripe"
	ProviderFake   Provider = "fake"
)

// SelectProvider picks the checkout backend. A Stripe key wins; otherwise the
// fake provider is used only when explicitly allowed.
func SelectProvider(stripeSecretKey string, allowFake bool) Provider {
	switch {
	case strings.TrimSpace(stripeSecretKey) != "":
		return ProviderStripe
	case allowFake:
		return ProviderFake
	default:
		return ProviderNone
	}
}

// CheckoutConfig carries the settings NewLinkCreator needs.
type CheckoutConfig struct {
	StripeSecretKey  string
	StripeSuccessURL string
	StripeCancelURL  string
	StripeDryRun     bool
	AllowFake        bool
	PublicBaseURL    string
}

// NewLinkCreator builds the configured checkout backend. The fake service is
// also returned so its page can be mounted; it is nil otherwise. With no
// provider the creator is nil.
func NewLinkCreator(cfg CheckoutConfig, logger *logging.Logger) (LinkCreator, *FakeCheckoutService) {
	if logger == nil {
		logger = logging.Default()
	}
	switch SelectProvider(cfg.StripeSecretKey, cfg.AllowFake) {
	case ProviderStripe:
		logger.Info("payment links via stripe", "dry_run", cfg.StripeDryRun)
		svc := NewStripeCheckoutService(cfg.StripeSecretKey, cfg.StripeSuccessURL, cfg.StripeCancelURL, logger).
			WithDryRun(cfg.StripeDryRun)
		return svc, nil
	case ProviderFake:
		logger.Warn("payment links via fake checkout; do not enable in production")
		fake := NewFakeCheckoutService(cfg.PublicBaseURL, logger)
		return fake, fake
	default:
		logger.Info("payment links disabled")
		return nil, nil
	}
}
