package messaging

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// WhatsAppBase is the deep-link prefix for sharing text to a chat.
const WhatsAppBase = "https://wa.me/?text="

var ErrEmailDisabled = errors.New("outbound email is not configured")

// ExternalMessenger reaches patients outside the service: a chat deep link
// the clinician opens, and an optional email channel.
type ExternalMessenger interface {
	ShareLink(text string) string
	SendEmail(ctx context.Context, to, subject, body string) error
}

// WhatsAppLink encodes text the way a browser's encodeURIComponent does.
func WhatsAppLink(text string) string {
	return WhatsAppBase + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// LinkMessenger only builds deep links. Email is refused.
type LinkMessenger struct{}

func (LinkMessenger) ShareLink(text string) string { return WhatsAppLink(text) }

func (LinkMessenger) SendEmail(context.Context, string, string, string) error {
	return ErrEmailDisabled
}

// SMTPConfig holds the outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMessenger sends email through an SMTP relay and builds deep links like
// LinkMessenger.
type SMTPMessenger struct {
	LinkMessenger
	dialer *gomail.Dialer
	from   string
	log    logrus.FieldLogger
}

func NewSMTPMessenger(cfg SMTPConfig, log logrus.FieldLogger) *SMTPMessenger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SMTPMessenger{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

func (m *SMTPMessenger) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := NewEmail(m.from, to, subject, body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email sent")
	return nil
}

// NewEmail builds a plain-text message.
func NewEmail(from, to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

var (
	_ ExternalMessenger = LinkMessenger{}
	_ ExternalMessenger = (*SMTPMessenger)(nil)
)
