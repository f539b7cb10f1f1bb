package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"easysign/internal/config"
)

// Sender delivers a message synchronously
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const defaultSendTimeout = 30 * time.Second

type smtpSender struct {
	host    string
	addr    string
	auth    smtp.Auth
	from    string
	timeout time.Duration
	logger  *zap.Logger
}

func NewSMTPSender(cfg *config.MailConfig, logger *zap.Logger) Sender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &smtpSender{
		host:    cfg.Host,
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth:    auth,
		from:    cfg.From,
		timeout: timeout,
		logger:  logger,
	}
}

// Send runs one SMTP session bounded by the sender timeout and ctx's deadline.
// Cancelling ctx aborts a session that is blocked on the server.
func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	s.logger.Info("Mail sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func (s *smtpSender) send(ctx context.Context, msg Message) error {
	envelopeFrom, err := mail.ParseAddress(s.from)
	if err != nil {
		return fmt.Errorf("invalid sender address %q: %w", s.from, err)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if s.auth != nil {
		if err := c.Auth(s.auth); err != nil {
			return err
		}
	}
	if err := c.Mail(envelopeFrom.Address); err != nil {
		return err
	}
	if err := c.Rcpt(msg.To); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(s.compose(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (s *smtpSender) compose(msg Message) []byte {
	var body strings.Builder
	body.WriteString("From: " + s.from + "\r\n")
	body.WriteString("To: " + msg.To + "\r\n")
	body.WriteString("Subject: " + msg.Subject + "\r\n")
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	body.WriteString(msg.HTMLBody)
	return []byte(body.String())
}

// logSender only logs messages; used when mail delivery is disabled
type logSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("Mail delivery disabled, message dropped",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
