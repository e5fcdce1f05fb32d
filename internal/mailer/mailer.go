package mailer

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Sender delivers a plain-text mail to the given recipients.
type Sender interface {
	Send(subject string, recipients []string, body string) error
}

// SMTPConfig holds the connection settings for the outgoing mail account.
type SMTPConfig struct {
	Server     string
	Port       int
	Username   string
	Password   string
	SenderName string
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

// NewSMTPSender creates a Sender backed by an authenticated STARTTLS dialer.
func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Server, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.Username,
		name:   cfg.SenderName,
	}
}

func (s *smtpSender) Send(subject string, recipients []string, body string) error {
	if len(recipients) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.name)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending mail %q: %w", subject, err)
	}
	return nil
}

// LogOnlySender logs mail instead of delivering it. Used when no mail
// credentials are configured and in tests.
type LogOnlySender struct{}

func (LogOnlySender) Send(subject string, recipients []string, body string) error {
	log.WithFields(log.Fields{
		"subject":    subject,
		"recipients": recipients,
	}).Info("Mail delivery disabled, logging message instead")
	return nil
}
