package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"bookworm/internal/shared/config"
	"bookworm/pkg/logger"
)

// EmailSender delivers one notification to its recipient.
type EmailSender interface {
	Send(ctx context.Context, notification *Notification) error
}

type smtpSender struct {
	config config.EmailConfig
	logger *logger.Logger
}

func NewSMTPSender(cfg config.EmailConfig) EmailSender {
	return &smtpSender{
		config: cfg,
		logger: logger.GetDefault(),
	}
}

func (s *smtpSender) Send(_ context.Context, notification *Notification) error {
	body, err := renderBody(notification)
	if err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	msg := bytes.Buffer{}
	msg.WriteString(fmt.Sprintf("From: Bookworm <%s>\r\n", s.config.FromEmail))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", notification.RecipientEmail))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", notification.Subject))
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{notification.RecipientEmail}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	notification.MarkSent()
	return nil
}

// logSender is the fallback when SMTP is not configured: delivery is logged
// so the pipeline stays observable in development.
type logSender struct {
	logger *logger.Logger
}

func NewLogSender() EmailSender {
	return &logSender{logger: logger.GetDefault()}
}

func (s *logSender) Send(_ context.Context, notification *Notification) error {
	s.logger.Info("Email delivery (log only)",
		"type", string(notification.Type),
		"recipient", notification.RecipientEmail,
		"subject", notification.Subject,
	)
	notification.MarkSent()
	return nil
}

var emailTemplates = map[NotificationType]*template.Template{
	TypeOrderConfirmed: template.Must(template.New("order").Parse(
		`<h2>Thanks for your order, {{.RecipientName}}!</h2>
<p>Your order <strong>{{index .Data "order_ref"}}</strong> ({{index .Data "item_count"}} items) is confirmed.</p>
<p>Total: ${{printf "%.2f" (index .Data "total")}}</p>`)),
	TypeGiftCardDelivery: template.Must(template.New("giftcard").Parse(
		`<h2>A gift card for you{{if .RecipientName}}, {{.RecipientName}}{{end}}!</h2>
<p>Card code: <strong>{{index .Data "code"}}</strong></p>
<p>Balance: ${{printf "%.2f" (index .Data "balance")}}</p>
{{if index .Data "message"}}<blockquote>{{index .Data "message"}}</blockquote>{{end}}`)),
	TypeLowStockAlert: template.Must(template.New("lowstock").Parse(
		`<h2>Low stock alert</h2>
<p><strong>{{index .Data "title"}}</strong> is down to {{index .Data "available"}} available copies.</p>`)),
}

func renderBody(notification *Notification) (string, error) {
	tmpl, ok := emailTemplates[notification.Type]
	if !ok {
		return "", fmt.Errorf("no template for notification type %s", notification.Type)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, notification); err != nil {
		return "", err
	}
	return buf.String(), nil
}
