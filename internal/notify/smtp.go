package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // envelope from, e.g. "no-reply@jadipraktisi.com"
	FromName string
	UseSSL   bool // true for SMTPS 465, false for STARTTLS 587
	Support  string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Support == "" {
		cfg.Support = "cs@jadipraktisi.com"
	}
	if cfg.FromName == "" {
		cfg.FromName = "Jadipraktisi"
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendPurchaseConfirmation(ctx context.Context, msg PurchaseConfirmation) error {
	html, text, err := renderConfirmation(msg, m.cfg.FromName, m.cfg.Support)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	return m.send(ctx, msg.To, SubjectPurchaseConfirmation, html, text)
}

func (m *SMTPMailer) SendTransactionReminder(ctx context.Context, msg TransactionReminder) error {
	html, text, err := renderReminder(msg, m.cfg.FromName, m.cfg.Support)
	if err != nil {
		return fmt.Errorf("render reminder: %w", err)
	}
	return m.send(ctx, msg.To, SubjectTransactionReminder, html, text)
}

func buildMessage(from, to, subject, htmlBody, textBody string, now time.Time) []byte {
	boundary := fmt.Sprintf("alt_%d", now.UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = msg.WriteString(fmt.Sprintf(format, a...)) }

	write("From: %s\r\n", from)
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	write("Date: %s\r\n", now.Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)
	return msg.Bytes()
}

func (m *SMTPMailer) fromHeader() string {
	name := strings.TrimSpace(m.cfg.FromName)
	if name == "" {
		return m.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", name), m.cfg.From)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	body := buildMessage(m.fromHeader(), to, subject, htmlBody, textBody, time.Now())
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	tlsCfg := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	var (
		conn net.Conn
		err  error
	)
	if m.cfg.UseSSL {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !m.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		}
	}
	if m.cfg.Username != "" {
		if err = c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return err
		}
	}
	if err = c.Mail(m.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(body); err != nil {
		return err
	}
	return w.Close()
}
