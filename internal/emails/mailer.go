package emails

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// ErrNotConfigured is returned when SMTP settings are missing. Best-effort
// callers (org approval notices) swallow it; explicit sends (resend invite)
// surface it as 503.
var ErrNotConfigured = errors.New("SMTP is not configured")

// Mailer sends transactional emails. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, subject string, recipients []string, textBody, htmlBody string) error
}

// SMTPMailer sends via a plain SMTP server (STARTTLS on submission ports,
// implicit TLS handled by the server on 465 deployments is out of scope).
type SMTPMailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// IsConfigured reports whether all required SMTP settings are present.
func (m *SMTPMailer) IsConfigured() bool {
	return m != nil && m.Host != "" && m.Port != 0 && m.User != "" && m.Pass != "" && m.From != ""
}

// Send delivers one message with optional text and HTML alternatives.
func (m *SMTPMailer) Send(ctx context.Context, subject string, recipients []string, textBody, htmlBody string) error {
	if !m.IsConfigured() {
		return ErrNotConfigured
	}
	if len(recipients) == 0 {
		return errors.New("at least one recipient is required")
	}
	if textBody == "" && htmlBody == "" {
		return errors.New("either a text or an HTML body is required")
	}

	msg := buildMessage(m.From, recipients, subject, textBody, htmlBody)
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.From, recipients, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const mimeBoundary = "=_impacto_alt_boundary"

func buildMessage(from string, to []string, subject, textBody, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case textBody != "" && htmlBody != "":
		fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", mimeBoundary, textBody)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", mimeBoundary, htmlBody)
		fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	case htmlBody != "":
		fmt.Fprintf(&b, "Content-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", htmlBody)
	default:
		fmt.Fprintf(&b, "Content-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", textBody)
	}
	return []byte(b.String())
}

// EscapeHTML escapes HTML specials for safe interpolation into templates.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
