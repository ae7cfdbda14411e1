package smtp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/go-library-cms/internal/config"
)

const sendTimeout = 10 * time.Second

var errHeaderInjection = errors.New("line break in mail header")

// Mailer sends plain-text email.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	send     sendFunc
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		send:     smtp.SendMail,
	}
}

// SendEmail gives up when ctx is done or after sendTimeout. The SMTP
// exchange itself keeps running in the background until the server answers.
func (m *mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	msg, err := m.message(to, subject, body)
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- m.send(net.JoinHostPort(m.host, m.port), auth, m.from, []string{to}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail to %s: %w", to, ctx.Err())
	}
}

func (m *mailer) message(to, subject, body string) ([]byte, error) {
	for _, h := range []string{to, subject, m.from} {
		if strings.ContainsAny(h, "\r\n") {
			return nil, errHeaderInjection
		}
	}
	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.from, to, subject, body)), nil
}
