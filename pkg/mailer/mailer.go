package mailer

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"tickrflow/pkg/logger"
)

// Config holds the SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Mailer sends the transactional emails produced by the notifier flows.
type Mailer interface {
	SendWelcomeEmail(email, name, intro string) error
	SendSummaryEmail(email, dateLabel, newsContent string) error
}

type mailer struct {
	cfg    Config
	logger *logger.Logger
}

// NewMailer creates a Mailer that reuses one authenticated SMTP host
// configuration across all sends.
func NewMailer(cfg Config, log *logger.Logger) (Mailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and from address are required")
	}
	return &mailer{cfg: cfg, logger: log}, nil
}

// SendWelcomeEmail renders and sends the personalized welcome email.
func (m *mailer) SendWelcomeEmail(email, name, intro string) error {
	html := strings.ReplaceAll(WelcomeEmailTemplate, "{{name}}", name)
	html = strings.ReplaceAll(html, "{{intro}}", intro)

	return m.send(email,
		"Welcome to Tickrflow - your stock market toolkit is ready!",
		"Thanks for joining Tickrflow",
		html,
	)
}

// SendSummaryEmail renders and sends the daily market news summary email.
func (m *mailer) SendSummaryEmail(email, dateLabel, newsContent string) error {
	html := strings.ReplaceAll(NewsSummaryEmailTemplate, "{{date}}", dateLabel)
	html = strings.ReplaceAll(html, "{{newsContent}}", newsContent)

	return m.send(email,
		fmt.Sprintf("Market News Summary Today - %s", dateLabel),
		"Today's market news summary - Tickrflow",
		html,
	)
}

func (m *mailer) send(to, subject, text, html string) error {
	msg := buildMessage(m.cfg.FromName, m.cfg.From, to, subject, text, html)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	var err error
	if m.cfg.UseTLS {
		err = m.sendWithTLS(addr, auth, to, msg)
	} else {
		err = smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
	}
	if err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	m.logger.Info("Email sent",
		logger.StringField("to", to),
		logger.StringField("subject", subject),
	)
	return nil
}

// buildMessage assembles a multipart/alternative MIME message with a plain
// text part and a base64-encoded HTML part.
func buildMessage(fromName, from, to, subject, text, html string) string {
	const boundary = "tickrflow-alt-boundary"

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(text)
	msg.WriteString("\r\n")

	// RFC 5322 caps line length; base64 keeps long template lines compliant.
	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(encodeBase64WithLineBreaks(html))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return msg.String()
}

func encodeBase64WithLineBreaks(s string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(s))
	var out strings.Builder
	for len(encoded) > 76 {
		out.WriteString(encoded[:76])
		out.WriteString("\r\n")
		encoded = encoded[76:]
	}
	out.WriteString(encoded)
	return out.String()
}

func (m *mailer) sendWithTLS(addr string, auth smtp.Auth, to, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("tls dial failed: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client failed: %w", err)
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
