// -----------------------------------------------------------------------
// Mailer Service - SMTP notification mails for rating and quarterly
// figure events. Without a configured host notifications are logged only.
// -----------------------------------------------------------------------

package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/smtp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/common"
)

// sendFunc delivers a rendered message
type sendFunc func(cfg common.MailConfig, from string, to []string, msg []byte) error

// Service implements interfaces.Notifier over SMTP
type Service struct {
	config common.MailConfig
	logger arbor.ILogger
	send   sendFunc
	now    func() time.Time
}

// NewService creates a new mailer service
func NewService(config common.MailConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
		send:   sendSMTP,
		now:    time.Now,
	}
}

// IsConfigured checks if SMTP is configured with the minimum required settings
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.From != "" && s.config.To != ""
}

// Notify mails subject and body to the configured recipient
func (s *Service) Notify(ctx context.Context, subject, body string) error {
	if !s.IsConfigured() {
		s.logger.Info().Str("subject", subject).Str("body", body).Msg("Notification (mail not configured)")
		return nil
	}
	return s.SendEmail(ctx, s.config.To, subject, body)
}

// SendEmail sends a plain text email
func (s *Service) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipients := splitRecipients(to)
	if len(recipients) == 0 {
		return fmt.Errorf("no mail recipient configured")
	}

	msg, err := s.buildMessage(recipients, subject, body)
	if err != nil {
		return err
	}

	if err := s.send(s.config, s.config.From, recipients, msg); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("Failed to send notification mail")
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.Info().Str("to", to).Str("subject", subject).Msg("Notification mail sent")
	return nil
}

// buildMessage renders an RFC 5322 message with a single UTF-8 text part
func (s *Service) buildMessage(to []string, subject, body string) ([]byte, error) {
	var h mail.Header
	h.SetDate(s.now())
	h.SetSubject(subject)
	h.SetAddressList("From", []*mail.Address{{Name: s.config.FromName, Address: s.config.From}})

	addrs := make([]*mail.Address, 0, len(to))
	for _, a := range to {
		addrs = append(addrs, &mail.Address{Address: a})
	}
	h.SetAddressList("To", addrs)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail writer: %w", err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, fmt.Errorf("failed to write mail body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close mail writer: %w", err)
	}
	return buf.Bytes(), nil
}

func splitRecipients(to string) []string {
	var out []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func sendSMTP(cfg common.MailConfig, from string, to []string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	if !cfg.UseTLS {
		return smtp.SendMail(addr, auth, from, to, msg)
	}

	// Implicit TLS first (port 465), STARTTLS when the server does not speak it
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		client, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer client.Close()
		if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
		return deliver(client, auth, from, to, msg)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()
	return deliver(client, auth, from, to, msg)
}

func deliver(client *smtp.Client, auth smtp.Auth, from string, to []string, msg []byte) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set mail recipient: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
