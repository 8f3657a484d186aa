// Package notify delivers outbound email and team chat messages.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/config"
)

// EmailMessage is a single outbound email.
type EmailMessage struct {
	To      []string
	Subject string
	HTML    string
}

// EmailSender delivers email.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// NewEmailSender picks SMTP when a relay is configured and a logging
// sender otherwise.
func NewEmailSender(cfg config.NotificationConfig, logger *zap.Logger) EmailSender {
	if cfg.SMTPEnabled() {
		return &SMTPSender{cfg: cfg}
	}
	logger.Warn("SMTP_HOST not set; emails will only be logged")
	return &LogSender{logger: logger}
}

// SMTPSender sends mail through an SMTP relay with STARTTLS when offered.
type SMTPSender struct {
	cfg config.NotificationConfig
}

func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if len(msg.To) == 0 {
		return errors.New("no recipients specified")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from, err := mail.ParseAddress(s.cfg.EmailFrom)
	if err != nil {
		return fmt.Errorf("parse sender: %w", err)
	}

	addr := s.cfg.SMTPHost + ":" + strconv.Itoa(s.cfg.SMTPPort)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.SMTPHost}); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}

	if s.cfg.SMTPUser != "" && s.cfg.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from.Address); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	for _, to := range msg.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("set recipient %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("initiate data transfer: %w", err)
	}
	if _, err := w.Write(buildMIME(s.cfg.EmailFrom, msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data transfer: %w", err)
	}
	return client.Quit()
}

func buildMIME(from string, msg EmailMessage) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// LogSender records emails in the log instead of sending them.
type LogSender struct {
	logger *zap.Logger
}

func (s *LogSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Info("email (not sent, no SMTP relay)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
