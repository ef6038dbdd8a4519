package delivery

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/goliatone/go-zaaknotify/core"
)

// SMTPMailer delivers rendered mail over plain SMTP.
type SMTPMailer struct {
	cfg core.MailConfig
	// send is swappable for tests.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg core.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(_ context.Context, msg core.MailMessage) error {
	to := strings.TrimSpace(msg.To)
	if !strings.Contains(to, "@") {
		return fmt.Errorf("delivery: invalid recipient address %q", to)
	}
	from := strings.TrimSpace(m.cfg.From)
	if from == "" {
		from = m.cfg.Username
	}

	payload := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from, to, msg.Subject, msg.Body,
	))

	var auth smtp.Auth
	if strings.TrimSpace(m.cfg.Username) != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	return m.send(addr, auth, from, []string{to}, payload)
}

var _ core.Mailer = (*SMTPMailer)(nil)
