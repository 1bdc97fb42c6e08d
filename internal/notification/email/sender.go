package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/config"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Message is one html email.
type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpSender struct {
	from     string
	user     string
	password string
	host     string
	port     string
	send     sendFunc
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewSMTPSender(cfg config.SMTP, logger *zap.Logger) Sender {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}

	return &smtpSender{
		from:     from,
		user:     cfg.User,
		password: cfg.Password,
		host:     cfg.Host,
		port:     cfg.Port,
		send:     smtp.SendMail,
		logger:   logger,
		tracer:   otel.Tracer("notification/email"),
	}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	ctx, span := s.tracer.Start(ctx, "smtp.Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("to.email", msg.To),
		attribute.String("subject", msg.Subject),
	)

	if s.host == "" {
		mylogger.Warn(ctx, s.logger, "SMTP host is not configured, dropping email", zap.String("to", msg.To))
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}

	mylogger.Info(ctx, s.logger, "Sending email", zap.String("to", msg.To), zap.String("subject", msg.Subject))

	if err := s.send(addr, auth, s.from, []string{msg.To}, compose(s.from, msg)); err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, s.logger, "Error sending email", zap.String("to", msg.To), zap.Error(err))

		return fmt.Errorf("failed to send mail: %w", err)
	}

	mylogger.Info(ctx, s.logger, "Sent email successfully", zap.String("to", msg.To))
	return nil
}

func compose(from string, msg Message) []byte {
	var b strings.Builder

	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n")
	b.WriteString(msg.Body)

	return []byte(b.String())
}
