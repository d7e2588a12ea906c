package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// dialTimeout bounds the whole SMTP exchange so a stuck relay cannot hold a
// request open indefinitely.
const dialTimeout = 10 * time.Second

// SMTPNotifier delivers mail through a single SMTP relay.
type SMTPNotifier struct {
	addr     string // host:port
	username string
	password string
	from     string
}

func NewSMTPNotifier(addr, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, username: username, password: password, from: from}
}

// Send performs one SMTP transaction. The connection carries a deadline; a
// relay that stops responding surfaces as an error instead of a hang.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	conn, err := net.DialTimeout("tcp", n.addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("smtp dial error: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(dialTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("smtp deadline error: %w", err)
	}

	host := n.addr
	if h, _, splitErr := net.SplitHostPort(n.addr); splitErr == nil {
		host = h
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("smtp client error: %w", err)
	}
	defer c.Close()

	// PlainAuth refuses to send credentials over a plaintext connection to a
	// remote host, so TLS must be negotiated before authenticating.
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("smtp starttls error: %w", err)
		}
	}

	if n.username != "" {
		if err := c.Auth(smtp.PlainAuth("", n.username, n.password, host)); err != nil {
			return fmt.Errorf("smtp auth error: %w", err)
		}
	}

	if err := c.Mail(n.from); err != nil {
		return fmt.Errorf("smtp mail error: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt error: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data error: %w", err)
	}
	if _, err := w.Write(buildMessage(n.from, to, subject, htmlBody)); err != nil {
		return fmt.Errorf("smtp write error: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp write error: %w", err)
	}

	return c.Quit()
}

// buildMessage assembles an RFC 5322 message with an HTML body.
func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
