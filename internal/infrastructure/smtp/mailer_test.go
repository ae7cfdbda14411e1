package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/go-library-cms/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer(send sendFunc) *mailer {
	m := NewMailer(&config.Config{SMTPHost: "mail.local", SMTPPort: "1025", SMTPFrom: "noreply@library.local"}).(*mailer)
	m.send = send
	return m
}

func TestSendEmail_BuildsMessage(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	m := newTestMailer(func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	})

	require.NoError(t, m.SendEmail(context.Background(), "alice@example.com", "Your login code", "Code 123456"))

	assert.Equal(t, "mail.local:1025", gotAddr)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	s := string(gotMsg)
	assert.True(t, strings.HasPrefix(s, "From: noreply@library.local\r\nTo: alice@example.com\r\nSubject: Your login code\r\n"))
	assert.True(t, strings.HasSuffix(s, "\r\n\r\nCode 123456"))
}

func TestSendEmail_RejectsHeaderInjection(t *testing.T) {
	m := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	})

	err := m.SendEmail(context.Background(), "a@x.io\r\nBcc: all@x.io", "hi", "body")
	assert.ErrorIs(t, err, errHeaderInjection)
}

func TestSendEmail_WrapsTransportError(t *testing.T) {
	m := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	})

	err := m.SendEmail(context.Background(), "a@x.io", "hi", "body")
	assert.ErrorContains(t, err, "connection refused")
}

func TestSendEmail_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	m := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.SendEmail(ctx, "a@x.io", "hi", "body")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
