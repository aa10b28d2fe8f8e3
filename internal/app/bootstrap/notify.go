package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	appconfig "github.com/mentoverse/mentoverse-platform/internal/config"
	"github.com/mentoverse/mentoverse-platform/internal/events"
	"github.com/mentoverse/mentoverse-platform/internal/mentors"
	"github.com/mentoverse/mentoverse-platform/internal/notify"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// BuildEmailSender picks SendGrid, SES or the logging stub from
// EMAIL_PROVIDER.
func BuildEmailSender(cfg *appconfig.Config, clients AWSClients, logger *logging.Logger) notify.EmailSender {
	sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	var sesSender *notify.SESSender
	if clients.SES != nil {
		sesSender = notify.NewSESSender(clients.SES, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
			ReplyTo:   replyTo(cfg),
		}, logger)
	}
	return notify.SelectSender(cfg.EmailProvider, sg, sesSender, logger)
}

// replyTo sends replies to the contact inbox when SES mails from another
// address.
func replyTo(cfg *appconfig.Config) string {
	if cfg.SendGridFromEmail == "" || cfg.SendGridFromEmail == cfg.SESFromEmail {
		return ""
	}
	return cfg.SendGridFromEmail
}

type applicationNotifier interface {
	NotifyApplicationReceived(ctx context.Context, a notify.ApplicationReceived) error
}

type outboxWriter interface {
	Insert(ctx context.Context, aggregateID, eventType string, payload any) (uuid.UUID, error)
}

// ApplicationFanout emails operators and appends an outbox event for each
// new mentor application. Either side may be nil.
type ApplicationFanout struct {
	notifier applicationNotifier
	outbox   outboxWriter
	logger   *logging.Logger
	now      func() time.Time
}

func NewApplicationFanout(notifier applicationNotifier, outbox outboxWriter, logger *logging.Logger) *ApplicationFanout {
	if logger == nil {
		logger = logging.Default()
	}
	return &ApplicationFanout{notifier: notifier, outbox: outbox, logger: logger, now: time.Now}
}

// ApplicationReceived implements mentors.ApplicationListener. Both targets
// are attempted even when the first fails.
func (f *ApplicationFanout) ApplicationReceived(ctx context.Context, app mentors.Application) error {
	var errs []error
	if f.notifier != nil {
		err := f.notifier.NotifyApplicationReceived(ctx, notify.ApplicationReceived{
			ApplicationID: app.ID,
			Name:          app.Name,
			Email:         app.Email,
			Title:         app.Title,
			Company:       app.Company,
			Expertise:     app.Expertise,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("notify operators: %w", err))
		}
	}
	if f.outbox != nil {
		receivedAt := app.CreatedAt
		if receivedAt.IsZero() {
			receivedAt = f.now().UTC()
		}
		_, err := f.outbox.Insert(ctx, app.ID, events.TypeApplicationReceived, events.MentorApplicationReceivedV1{
			EventID:       uuid.NewString(),
			ApplicationID: app.ID,
			Email:         app.Email,
			Expertise:     app.Expertise,
			ReceivedAt:    receivedAt,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("outbox: %w", err))
		}
	}
	if len(errs) > 0 {
		f.logger.Warn("mentor application fanout incomplete", "application_id", app.ID, "errors", len(errs))
	}
	return errors.Join(errs...)
}
