package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"researchnett/internal/logger"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

// NewLogMailer creates a mailer for development setups without SMTP.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send logs msg.
func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Info(ctx, "mail not sent, no SMTP configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends through an SMTP relay with PLAIN auth.
type SMTPMailer struct {
	cfg  SMTPConfig
	send sendFunc
}

// NewSMTPMailer creates an SMTP-backed mailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// Send delivers msg. net/smtp has no context support; ctx only gates the start.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, m.render(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	logger.Debug(ctx, "mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (m *SMTPMailer) render(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// New picks the SMTP mailer when a host is configured, the log mailer otherwise.
func New(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		return NewLogMailer()
	}
	return NewSMTPMailer(cfg)
}

// ConfirmationMessage is sent after sign-up when confirmation is required.
func ConfirmationMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Confirm your ResearchNett account",
		Body:    "Welcome to ResearchNett.\n\nConfirm your email address to finish signing up:\n" + link + "\n",
	}
}

// ResetMessage carries a password reset link.
func ResetMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Reset your ResearchNett password",
		Body:    "A password reset was requested for this account.\n\nSet a new password here:\n" + link + "\n\nIf you did not ask for this, ignore this email.\n",
	}
}
