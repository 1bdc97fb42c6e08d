package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captured struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestSender(cfg config.SMTP, c *captured, err error) *smtpSender {
	s := NewSMTPSender(cfg, zap.NewNop()).(*smtpSender)
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.auth, c.from, c.to, c.msg = addr, a, from, to, string(msg)
		return err
	}
	return s
}

func TestSend_ComposesMessage(t *testing.T) {
	var c captured
	s := newTestSender(config.SMTP{Host: "smtp.test", Port: "2525", User: "bot@gikihub.pk", Password: "x"}, &c, nil)

	err := s.Send(context.Background(), Message{To: "ali@giki.edu.pk", Subject: "Order #1 received", Body: "<p>hi</p>"})
	require.NoError(t, err)

	require.Equal(t, "smtp.test:2525", c.addr)
	require.NotNil(t, c.auth)
	require.Equal(t, "bot@gikihub.pk", c.from)
	require.Equal(t, []string{"ali@giki.edu.pk"}, c.to)
	require.Contains(t, c.msg, "Subject: Order #1 received\r\n")
	require.Contains(t, c.msg, "To: ali@giki.edu.pk\r\n")
	require.Contains(t, c.msg, "<p>hi</p>")
}

func TestSend_NoAuthWithoutUser(t *testing.T) {
	var c captured
	s := newTestSender(config.SMTP{Host: "mailhog", Port: "1025", From: "noreply@gikihub.pk"}, &c, nil)

	require.NoError(t, s.Send(context.Background(), Message{To: "a@b.c"}))
	require.Nil(t, c.auth)
	require.Equal(t, "noreply@gikihub.pk", c.from)
}

func TestSend_WrapsError(t *testing.T) {
	var c captured
	boom := errors.New("connection refused")
	s := newTestSender(config.SMTP{Host: "smtp.test", Port: "25"}, &c, boom)

	err := s.Send(context.Background(), Message{To: "a@b.c"})
	require.ErrorIs(t, err, boom)
}

func TestSend_SkipsWithoutHost(t *testing.T) {
	var c captured
	s := newTestSender(config.SMTP{}, &c, errors.New("must not be called"))

	require.NoError(t, s.Send(context.Background(), Message{To: "a@b.c"}))
	require.Empty(t, c.to)
}
