// Package mailer отправляет письма через SMTP или только пишет их в лог.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Message — одно HTML-письмо.
type Message struct {
	FromName string
	To       string
	Subject  string
	HTML     string
}

// Sender отправляет письма. Реализация создаётся один раз в main и передаётся сервисам.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig параметры SMTP-сервера.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender отправляет письма через net/smtp с PLAIN-аутентификацией.
type SMTPSender struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("invalid header value")
	}
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.sendMail(addr, auth, s.cfg.From, []string{msg.To}, buildMIME(s.cfg.From, msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMIME(from string, msg Message) []byte {
	fromHeader := from
	if msg.FromName != "" {
		fromHeader = fmt.Sprintf("%q <%s>", msg.FromName, from)
	}
	var b strings.Builder
	b.WriteString("From: " + fromHeader + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// LogSender ничего не отправляет, только логирует письмо. Используется, когда SMTP не настроен.
type LogSender struct {
	Logger *zap.SugaredLogger
}

func NewLogSender(logger *zap.SugaredLogger) *LogSender {
	return &LogSender{Logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Infow("Mail (not sent, SMTP disabled)", "to", msg.To, "subject", msg.Subject)
	return nil
}
