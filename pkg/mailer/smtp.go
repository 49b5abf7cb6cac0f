/**
 * @description
 * SMTP mail transport. Connects over implicit TLS, authenticates with PLAIN,
 * and sends a multipart/alternative message carrying both the plain-text and
 * HTML renderings. Implements the notify.Transport interface.
 */
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/google/uuid"

	"github.com/Susan56789/flixxit-sub000/internal/notify"
)

// defaultTimeout bounds the whole SMTP exchange so a hung relay cannot stall
// a scheduler tick.
const defaultTimeout = 30 * time.Second

// Config holds the SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration // per-send bound; defaults to 30s
}

// SMTPTransport sends mail through an SMTP relay.
type SMTPTransport struct {
	config Config
}

// New creates a new SMTP transport.
func New(config Config) *SMTPTransport {
	return &SMTPTransport{config: config}
}

// Send delivers the message and returns a generated message ID.
func (t *SMTPTransport) Send(ctx context.Context, msg notify.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := uuid.NewString()
	boundary := "flixxit-" + messageID

	var body bytes.Buffer
	fmt.Fprintf(&body, "From: %s\r\n", t.config.From)
	fmt.Fprintf(&body, "To: %s\r\n", msg.To)
	fmt.Fprintf(&body, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&body, "Message-ID: <%s@flixxit>\r\n", messageID)
	fmt.Fprintf(&body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&body, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&body, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&body, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.Text)
	fmt.Fprintf(&body, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.HTML)
	fmt.Fprintf(&body, "--%s--\r\n", boundary)

	timeout := t.config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	addr := fmt.Sprintf("%s:%d", t.config.Host, t.config.Port)
	dialer := &net.Dialer{Timeout: timeout, Deadline: deadline}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: t.config.Host})
	if err != nil {
		return "", fmt.Errorf("connect to smtp server: %w", err)
	}
	defer conn.Close()

	// The deadline covers every read and write in the SMTP dialogue below.
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("set connection deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, t.config.Host)
	if err != nil {
		return "", fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", t.config.Username, t.config.Password, t.config.Host)
	if err := client.Auth(auth); err != nil {
		return "", fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(t.config.From); err != nil {
		return "", fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return "", fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return "", fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish message: %w", err)
	}

	return messageID, client.Quit()
}
