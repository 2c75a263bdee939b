package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"eventrsvp/internal/domain"
)

// SMTPConfig holds configuration for the direct SMTP provider.
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromAddress string
	FromName    string
}

type smtpProvider struct {
	dialer      *gomail.Dialer
	fromAddress string
	fromName    string
}

// NewSMTPProvider returns a Provider that delivers through a plain SMTP
// server. It is typically configured as the fallback behind the hosted API.
func NewSMTPProvider(cfg SMTPConfig) domain.Provider {
	return &smtpProvider{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}
}

func (p *smtpProvider) Name() string { return "smtp" }

// Send dials and sends synchronously. gomail does not take a context; the
// dial has its own network timeout and a failed attempt is simply reported
// to the dispatcher.
func (p *smtpProvider) Send(_ context.Context, msg *domain.Message) error {
	m := buildMIME(p.fromAddress, p.fromName, msg)
	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	return nil
}
