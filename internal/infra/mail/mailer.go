// Package mail delivers one-time login codes over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// SMTPMailer sends OTP emails through a configured SMTP relay.
// When Host is empty the code is logged instead of sent, which keeps local
// development working without a mail server.
type SMTPMailer struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer. Pass an empty host for log-only mode.
func NewSMTPMailer(host string, port int, user, pass, from string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from, logger: logger}
}

// SendOTP delivers the code to the address.
func (m *SMTPMailer) SendOTP(ctx context.Context, email, code string) error {
	if m.host == "" {
		m.logger.Info("mail: SMTP not configured, logging OTP instead",
			zap.String("email", email),
			zap.String("code", code),
		)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your login code\r\n\r\n"+
		"Your one-time login code is %s. It expires in 5 minutes.\r\n"+
		"If you did not request this code, you can ignore this email.\r\n",
		m.from, email, code)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{email}, []byte(msg)); err != nil {
		m.logger.Error("mail: failed to send OTP", zap.String("email", email), zap.Error(err))
		return err
	}

	m.logger.Info("mail: OTP sent", zap.String("email", email))
	return nil
}
