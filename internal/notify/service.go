package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// BookingConfirmed carries the already formatted details of a confirmed
// booking.
type BookingConfirmed struct {
	Reference     string
	ServiceName   string
	MentorName    string
	Date          string
	Time          string
	Amount        string
	PaymentMethod string
	PaymentURL    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Message       string
}

// ApplicationReceived describes a new mentor application.
type ApplicationReceived struct {
	ApplicationID string
	Name          string
	Email         string
	Title         string
	Company       string
	Expertise     []string
}

// Service sends booking emails to customers and copies to operators.
type Service struct {
	email     EmailSender
	operators []string
	logger    *logging.Logger
}

// NewService creates a notification service. operators may be empty.
func NewService(email EmailSender, operators []string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	var cleaned []string
	for _, op := range operators {
		if op = strings.TrimSpace(op); op != "" {
			cleaned = append(cleaned, op)
		}
	}
	return &Service{email: email, operators: cleaned, logger: logger}
}

// NotifyBookingConfirmed emails the customer a receipt and each operator a
// copy. Every recipient is attempted; failures are counted.
func (s *Service) NotifyBookingConfirmed(ctx context.Context, b BookingConfirmed) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping confirmation")
		return nil
	}

	var errs []error
	if b.CustomerEmail != "" {
		msg := EmailMessage{
			To:        b.CustomerEmail,
			ToName:    b.CustomerName,
			Subject:   fmt.Sprintf("Your Mentoverse session is confirmed (%s)", b.Reference),
			Body:      customerBody(b),
			HTML:      customerHTML(b),
			Category:  CategoryBookingReceipt,
			Reference: b.Reference,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: failed to send confirmation", "error", err, "reference", b.Reference)
			errs = append(errs, err)
		} else {
			s.logger.Info("notify: confirmation email sent", "reference", b.Reference)
		}
	}

	for _, op := range s.operators {
		msg := EmailMessage{
			To:        op,
			Subject:   fmt.Sprintf("New booking %s: %s with %s", b.Reference, b.ServiceName, b.MentorName),
			Body:      operatorBody(b),
			Category:  CategoryOperatorCopy,
			Reference: b.Reference,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: failed to send operator copy", "error", err, "to", op)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed", len(errs))
	}
	return nil
}

// NotifyApplicationReceived tells operators a mentor applied.
func (s *Service) NotifyApplicationReceived(ctx context.Context, a ApplicationReceived) error {
	if s.email == nil || len(s.operators) == 0 {
		return nil
	}
	body := fmt.Sprintf(`A new mentor application is waiting for review.

Name: %s
Email: %s
Role: %s at %s
Expertise: %s
Application ID: %s`, a.Name, a.Email, a.Title, a.Company, strings.Join(a.Expertise, ", "), a.ApplicationID)

	var errs []error
	for _, op := range s.operators {
		if err := s.email.Send(ctx, EmailMessage{
			To:        op,
			Subject:   "New mentor application - " + a.Name,
			Body:      body,
			Category:  CategoryMentorApplication,
			Reference: a.ApplicationID,
		}); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed", len(errs))
	}
	return nil
}

func customerBody(b BookingConfirmed) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\nYour session is booked.\n\n", firstName(b.CustomerName))
	fmt.Fprintf(&sb, "Booking reference: %s\n", b.Reference)
	fmt.Fprintf(&sb, "Service: %s\n", b.ServiceName)
	fmt.Fprintf(&sb, "Mentor: %s\n", b.MentorName)
	fmt.Fprintf(&sb, "Date: %s\n", b.Date)
	fmt.Fprintf(&sb, "Time: %s\n", b.Time)
	fmt.Fprintf(&sb, "Amount: %s\n", b.Amount)
	if b.PaymentURL != "" {
		fmt.Fprintf(&sb, "\nComplete your payment (%s): %s\n", strings.ToUpper(b.PaymentMethod), b.PaymentURL)
	}
	sb.WriteString("\nSee you there,\nMentoverse")
	return sb.String()
}

func customerHTML(b BookingConfirmed) string {
	row := func(label, value string) string {
		return fmt.Sprintf(`<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`,
			label, html.EscapeString(value))
	}
	var sb strings.Builder
	sb.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	sb.WriteString(`<h2 style="color: #4f46e5;">Booking Confirmed</h2>`)
	sb.WriteString(`<table style="border-collapse: collapse; margin: 20px 0;">`)
	sb.WriteString(row("Reference", b.Reference))
	sb.WriteString(row("Service", b.ServiceName))
	sb.WriteString(row("Mentor", b.MentorName))
	sb.WriteString(row("Date", b.Date))
	sb.WriteString(row("Time", b.Time))
	sb.WriteString(row("Amount", b.Amount))
	sb.WriteString(`</table>`)
	if b.PaymentURL != "" {
		fmt.Fprintf(&sb, `<p><a href="%s" style="background: #4f46e5; color: #fff; padding: 10px 14px; border-radius: 8px; text-decoration: none;">Pay with %s</a></p>`,
			html.EscapeString(b.PaymentURL), strings.ToUpper(html.EscapeString(b.PaymentMethod)))
	}
	sb.WriteString(`<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">Mentoverse</p></div>`)
	return sb.String()
}

func operatorBody(b BookingConfirmed) string {
	body := fmt.Sprintf(`%s booked %s with %s.

Reference: %s
When: %s %s
Amount: %s (%s)
Email: %s
Phone: %s`, b.CustomerName, b.ServiceName, b.MentorName, b.Reference, b.Date, b.Time, b.Amount, b.PaymentMethod, b.CustomerEmail, b.CustomerPhone)
	if b.Message != "" {
		body += "\nMessage: " + b.Message
	}
	return body
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}
