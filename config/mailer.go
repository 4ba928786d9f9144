package config

import (
	"context"
	"crypto/tls"
	"errors"

	mail "github.com/go-mail/mail/v2"
)

// ErrSMTPNotConfigured is returned by SendMail when SMTP_HOST or SMTP_FROM is missing.
var ErrSMTPNotConfigured = errors.New("smtp not configured (SMTP_HOST/SMTP_FROM)")

// Mailer delivers HTML email.
type Mailer interface {
	SendMail(ctx context.Context, to []string, subject, html string) error
}

// SMTPMailer sends mail through an SMTP relay with mandatory STARTTLS.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendMail(ctx context.Context, to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if m.cfg.Host == "" || m.cfg.From == "" {
		return ErrSMTPNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         m.cfg.Host,
		InsecureSkipVerify: m.cfg.SkipTLSVerify, // dev only
	}

	return d.DialAndSend(msg)
}
