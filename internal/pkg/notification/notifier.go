// internal/pkg/notification/notifier.go
package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ambika-backend/internal/config"
	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
)

// Notifier sends customer notifications after checkout events. Every
// public method is fire-and-forget: delivery failures are logged and
// swallowed, never returned, so a down mail provider cannot fail an
// order.
type Notifier struct {
	config *config.Config
	logger *logrus.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{
		config: cfg,
		logger: logger,
	}
}

// OrderPlaced notifies the customer that their order was created.
func (n *Notifier) OrderPlaced(to, userName, orderNumber string, total int64) {
	data := map[string]interface{}{
		"UserName":    userName,
		"OrderNumber": orderNumber,
		"Total":       formatRupees(total),
	}
	n.dispatch(KindOrderPlaced, to,
		fmt.Sprintf("Order Confirmation - %s", orderNumber),
		orderPlacedTemplate, data)
}

// OrderStatusChanged notifies the customer about a status transition.
func (n *Notifier) OrderStatusChanged(to, userName, orderNumber, status, note string) {
	data := map[string]interface{}{
		"UserName":    userName,
		"OrderNumber": orderNumber,
		"Status":      strings.ReplaceAll(status, "_", " "),
		"Note":        note,
	}
	n.dispatch(KindOrderStatus, to,
		fmt.Sprintf("Order %s - %s", orderNumber, strings.ReplaceAll(status, "_", " ")),
		orderStatusTemplate, data)
}

// PaymentReceived notifies the customer that a payment completed.
func (n *Notifier) PaymentReceived(to, userName, orderNumber string, amount int64) {
	data := map[string]interface{}{
		"UserName":    userName,
		"OrderNumber": orderNumber,
		"Amount":      formatRupees(amount),
	}
	n.dispatch(KindPaymentReceived, to,
		fmt.Sprintf("Payment Received - %s", orderNumber),
		paymentReceivedTemplate, data)
}

func (n *Notifier) dispatch(kind Kind, to, subject, tmpl string, data map[string]interface{}) {
	html, err := render(tmpl, data)
	if err != nil {
		n.logger.WithError(err).WithField("kind", kind).Error("failed to render notification")
		return
	}

	msg := &Message{
		To:          []string{to},
		Subject:     subject,
		HTMLContent: html,
		Kind:        kind,
	}

	go func() {
		if err := n.send(msg); err != nil {
			wrapped := &apperrors.ExternalServiceError{Service: "email", Err: err}
			n.logger.WithError(wrapped).WithFields(logrus.Fields{
				"kind": kind,
				"to":   to,
			}).Error("notification delivery failed")
		}
	}()
}

func (n *Notifier) send(msg *Message) error {
	switch n.config.Email.Provider {
	case "smtp":
		return n.sendSMTP(msg)
	case "log":
		// Development provider: print instead of deliver.
		n.logger.WithFields(logrus.Fields{
			"kind":    msg.Kind,
			"to":      msg.To,
			"subject": msg.Subject,
		}).Info("notification (log provider)")
		return nil
	default:
		return fmt.Errorf("unsupported email provider: %s", n.config.Email.Provider)
	}
}

func (n *Notifier) sendSMTP(msg *Message) error {
	cfg := n.config.Email
	if cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host")
	}

	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTMLContent)

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	return smtp.SendMail(addr, auth, cfg.FromEmail, msg.To, buf.Bytes())
}

func render(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("notification").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func formatRupees(paise int64) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}
