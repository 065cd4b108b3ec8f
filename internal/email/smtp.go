package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	jwemail "github.com/jordan-wright/email"
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Addr     string // host:port
	Host     string // host only, for AUTH
	Username string
	Password string
}

// smtpClient is the concrete Sender backed by a plain SMTP relay. Used by
// deployments that keep delivery on their own relay instead of an email API.
type smtpClient struct {
	cfg  SMTPConfig
	auth smtp.Auth
}

// NewSMTPClient returns a Sender that delivers email over SMTP.
func NewSMTPClient(cfg SMTPConfig) Sender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &smtpClient{cfg: cfg, auth: auth}
}

func (c *smtpClient) Send(_ context.Context, m Message) error {
	em := jwemail.NewEmail()
	em.From = m.From
	em.To = []string{m.To}
	if m.Bcc != "" {
		em.Bcc = []string{m.Bcc}
	}
	em.Subject = m.Subject
	em.Text = []byte(m.Body)

	if m.AttachmentName != "" {
		if _, err := em.Attach(bytes.NewReader(m.Attachment), m.AttachmentName, "application/pdf"); err != nil {
			return fmt.Errorf("email: attach %s: %w", m.AttachmentName, err)
		}
	}

	if err := em.Send(c.cfg.Addr, c.auth); err != nil {
		return fmt.Errorf("email: smtp send: %w", err)
	}
	return nil
}
