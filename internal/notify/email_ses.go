package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// SESAPI is the slice of the SES v2 client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig configures the SES sender. ReplyTo routes customer replies to
// the support inbox when the from address is a no-reply sender.
type SESConfig struct {
	FromEmail string
	FromName  string
	ReplyTo   string
}

// SESSender delivers booking and onboarding mail through SES v2.
type SESSender struct {
	client  SESAPI
	from    string
	replyTo []string
	logger  *logging.Logger
}

// NewSESSender returns nil without a client or from address so SelectSender
// falls back to the stub.
func NewSESSender(client SESAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if client == nil || cfg.FromEmail == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	s := &SESSender{client: client, from: mailbox(cfg.FromName, cfg.FromEmail), logger: logger}
	if cfg.ReplyTo != "" {
		s.replyTo = []string{cfg.ReplyTo}
	}
	return s
}

func mailbox(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}

func utf8Content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

// Send implements EmailSender. Text and HTML parts are each optional.
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	body := &types.Body{}
	if msg.Body != "" {
		body.Text = utf8Content(msg.Body)
	}
	if msg.HTML != "" {
		body.Html = utf8Content(msg.HTML)
	}

	var tags []types.MessageTag
	if msg.Category != "" {
		tags = append(tags, types.MessageTag{Name: aws.String("category"), Value: aws.String(msg.Category)})
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		EmailTags:        tags,
		FromEmailAddress: aws.String(s.from),
		ReplyToAddresses: s.replyTo,
		Destination:      &types.Destination{ToAddresses: []string{mailbox(msg.ToName, msg.To)}},
		Content: &types.EmailContent{
			Simple: &types.Message{Subject: utf8Content(msg.Subject), Body: body},
		},
	})
	if err != nil {
		s.logger.Error("ses send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: ses send to %s: %w", msg.To, err)
	}
	s.logger.Info("email sent via ses", "to", msg.To, "subject", msg.Subject, "message_id", aws.ToString(out.MessageId))
	return nil
}

var _ EmailSender = (*SESSender)(nil)
