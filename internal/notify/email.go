package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// DefaultFromName is the sender name when none is configured.
const DefaultFromName = "Mentoverse"

// EmailSender sends one email. SendGrid, SES and the stub implement it.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Categories tag outgoing mail so provider dashboards can split booking
// receipts from operator traffic.
const (
	CategoryBookingReceipt    = "booking_receipt"
	CategoryOperatorCopy      = "operator_copy"
	CategoryMentorApplication = "mentor_application"
)

// EmailMessage is one outgoing email. Reference, when set, is the booking
// reference or application id the mail is about.
type EmailMessage struct {
	To        string
	ToName    string
	Subject   string
	Body      string
	HTML      string
	Category  string
	Reference string
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// NewSendGridSender returns nil without an API key.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// buildMail renders msg as a v3 mail. A plain-text message gets its text
// repeated as the HTML part since SendGrid requires one.
func (s *SendGridSender) buildMail(msg EmailMessage) *mail.SGMailV3 {
	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	m := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.fromEmail), msg.Subject, mail.NewEmail(msg.ToName, msg.To), msg.Body, html)
	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}
	if msg.Reference != "" && len(m.Personalizations) > 0 {
		m.Personalizations[0].SetCustomArg("reference", msg.Reference)
	}
	return m
}

// Send implements EmailSender.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}
	resp, err := s.client.SendWithContext(ctx, s.buildMail(msg))
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To, "reference", msg.Reference)
		return fmt.Errorf("notify: sendgrid send to %s: %w", msg.To, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.Error("sendgrid rejected mail", "status", resp.StatusCode, "body", resp.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid status %d", resp.StatusCode)
	}
	s.logger.Info("email sent via sendgrid", "to", msg.To, "category", msg.Category, "reference", msg.Reference)
	return nil
}

// StubEmailSender logs instead of sending. Used when EMAIL_PROVIDER is unset.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender returns the logging sender.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs msg and reports success.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: would send email",
		"to", msg.To, "subject", msg.Subject, "category", msg.Category, "reference", msg.Reference)
	return nil
}

// Provider names an email backend.
const (
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
)

// SelectSender picks the configured sender, falling back to the stub when
// the chosen provider is not usable.
func SelectSender(provider string, sg *SendGridSender, ses *SESSender, logger *logging.Logger) EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	switch provider {
	case ProviderSendGrid:
		if sg != nil {
			return sg
		}
		logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; using stub email sender")
	case ProviderSES:
		if ses != nil {
			return ses
		}
		logger.Warn("ses selected but no SES client; using stub email sender")
	}
	return NewStubEmailSender(logger)
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
