// Package notification delivers welcome messages to newly registered
// customers over SMTP.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/eshift/customer-core/internal/domain"
)

// EmailSink sends welcome mail through an SMTP relay.
type EmailSink struct {
	dialer      *gomail.Dialer
	sender      string
	displayName string
	logger      *slog.Logger
}

// NewEmailSink creates a new SMTP-backed notification sink
func NewEmailSink(host string, port int, username, password, sender, displayName string, logger *slog.Logger) *EmailSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &EmailSink{
		dialer:      gomail.NewDialer(host, port, username, password),
		sender:      sender,
		displayName: displayName,
		logger:      logger,
	}
}

// SendWelcome sends the registration confirmation carrying the customer's
// name, customer number and email.
func (s *EmailSink) SendWelcome(ctx context.Context, customer *domain.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.sender, s.displayName)
	m.SetHeader("To", customer.Email)
	m.SetHeader("Subject", "Welcome to e-Shift!")
	m.SetBody("text/plain", welcomeBody(customer))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	s.logger.Info("welcome email sent",
		slog.String("email", customer.Email),
		slog.String("customer_number", customer.CustomerNumber),
	)
	return nil
}

func welcomeBody(c *domain.Customer) string {
	return fmt.Sprintf(`Dear %s %s,

Thank you for registering with e-Shift! Your account has been successfully created.
Your Customer Number is: %s

You can now log in to your account using your email (%s) and password.

Best regards,
The e-Shift Team
`, c.FirstName, c.LastName, c.CustomerNumber, c.Email)
}
