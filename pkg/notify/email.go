package notify

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// EmailConfig holds email notification configuration.
type EmailConfig struct {
	SMTPHost   string `yaml:"host" env:"SMTP_HOST"`         // e.g. "smtp.gmail.com"
	SMTPPort   string `yaml:"port" env:"SMTP_PORT"`         // e.g. "465" or "587"
	From       string `yaml:"from" env:"SMTP_FROM"`         // sender email
	SenderName string `yaml:"sender_name" env:"SMTP_NAME"`  // display name in From
	Password   string `yaml:"password" env:"SMTP_PASSWORD"` // SMTP password or app-specific password
	To         string `yaml:"to" env:"SMTP_TO"`             // default comma-separated recipients
}

// Enabled reports whether enough is configured to send mail.
func (c EmailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.From != "" && c.Password != ""
}

// smtpTimeout bounds a send whose context carries no deadline. It covers
// the dial, the TLS handshake and every SMTP round trip.
const smtpTimeout = 30 * time.Second

type emailNotifier struct {
	cfg EmailConfig
}

// NewEmailNotifier creates an email notifier.
func NewEmailNotifier(cfg EmailConfig) Notifier {
	return &emailNotifier{cfg: cfg}
}

func (e *emailNotifier) Channel() Channel {
	return ChannelEmail
}

func (e *emailNotifier) Send(ctx context.Context, msg Message) error {
	to := msg.To
	if to == "" {
		to = e.cfg.To
	}
	recipients := splitRecipients(to)
	if len(recipients) == 0 {
		return fmt.Errorf("email: no recipients")
	}

	body := buildEmailBody(e.cfg.SenderName, e.cfg.From, recipients, msg)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, smtpTimeout)
		defer cancel()
	}

	var client *smtp.Client
	var err error
	addr := net.JoinHostPort(e.cfg.SMTPHost, e.cfg.SMTPPort)

	if e.cfg.SMTPPort == "465" {
		client, err = dialTLS(ctx, addr, e.cfg.SMTPHost)
	} else {
		client, err = dialSTARTTLS(ctx, addr, e.cfg.SMTPHost)
	}
	if err != nil && ctx.Err() == nil {
		// Fallback: try the other method
		if e.cfg.SMTPPort == "465" {
			altAddr := net.JoinHostPort(e.cfg.SMTPHost, "587")
			client, err = dialSTARTTLS(ctx, altAddr, e.cfg.SMTPHost)
		} else {
			altAddr := net.JoinHostPort(e.cfg.SMTPHost, "465")
			client, err = dialTLS(ctx, altAddr, e.cfg.SMTPHost)
		}
	}
	if err != nil {
		return fmt.Errorf("SMTP connect failed: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", e.cfg.From, e.cfg.Password, e.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}
	if err := client.Mail(e.cfg.From); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}
	for _, to := range recipients {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("SMTP RCPT TO %s: %w", to, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("SMTP write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("SMTP close data: %w", err)
	}
	return client.Quit()
}

func dialer() *net.Dialer {
	return &net.Dialer{Timeout: 10 * time.Second}
}

// withDeadline applies the context deadline to every read and write on
// conn, so a server that never greets cannot stall the send.
func withDeadline(ctx context.Context, conn net.Conn) {
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
}

func dialTLS(ctx context.Context, addr, host string) (*smtp.Client, error) {
	d := &tls.Dialer{NetDialer: dialer(), Config: &tls.Config{ServerName: host}}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("TLS dial %s: %w", addr, err)
	}
	withDeadline(ctx, conn)
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SMTP client: %w", err)
	}
	return client, nil
}

func dialSTARTTLS(ctx context.Context, addr, host string) (*smtp.Client, error) {
	conn, err := dialer().DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	withDeadline(ctx, conn)
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SMTP client: %w", err)
	}
	tlsConfig := &tls.Config{ServerName: host}
	if err := client.StartTLS(tlsConfig); err != nil {
		client.Close()
		return nil, fmt.Errorf("STARTTLS: %w", err)
	}
	return client, nil
}

// encodeRFC2047 encodes a UTF-8 string for email headers using RFC 2047 base64 encoding.
func encodeRFC2047(s string) string {
	return "=?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(s)) + "?="
}

func splitRecipients(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func buildEmailBody(senderName, from string, to []string, msg Message) string {
	var sb strings.Builder

	if senderName == "" {
		senderName = "Happening Now"
	}
	sb.WriteString(fmt.Sprintf("From: %s <%s>\r\n", encodeRFC2047(senderName), from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", encodeRFC2047(msg.Title)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: base64\r\n")
	sb.WriteString("\r\n")

	// Use pre-rendered HTML if available, otherwise plain text
	htmlContent := msg.HTMLBody
	if htmlContent == "" {
		htmlContent = "<pre>" + msg.Body + "</pre>"
	}
	sb.WriteString(base64.StdEncoding.EncodeToString([]byte(htmlContent)))

	return sb.String()
}
