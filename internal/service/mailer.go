package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer is the outbound-delivery boundary. Implementations return an
// error instead of panicking; callers fold failures into
// ErrDeliveryFailed.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SMTPMailer delivers over plain SMTP with AUTH PLAIN, credentials
// injected once at construction.
type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPMailer(host, port, user, pass, from string) *SMTPMailer {
	if from == "" {
		from = user
	}
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	if m.host == "" || m.port == "" || m.user == "" || m.pass == "" {
		return fmt.Errorf("smtp not configured")
	}

	var msg strings.Builder
	boundary := "kgts-alt-boundary"
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: multipart/alternative; boundary=\"" + boundary + "\"\r\n\r\n")
	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(textBody + "\r\n")
	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(htmlBody + "\r\n")
	msg.WriteString("--" + boundary + "--\r\n")

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer is the development mailer: it logs that a message was
// issued without ever logging the body, which carries the code.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, _, _ string) error {
	m.logger.InfoContext(ctx, "mail delivery (dev mode, not sent)",
		"to", to,
		"subject", subject,
	)
	return nil
}
