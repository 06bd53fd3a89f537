package deliver

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/matheuskafuri/engdigest/internal/render"
)

type EmailOptions struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	To          []string
	StartTLS    bool
	ImplicitTLS bool
	Timeout     time.Duration
}

type Email struct {
	opts EmailOptions
	now  func() time.Time
}

func NewEmail(opts EmailOptions) *Email {
	if opts.Port == 0 {
		opts.Port = 587
		if opts.ImplicitTLS {
			opts.Port = 465
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Email{opts: opts, now: time.Now}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Deliver(ctx context.Context, d Digest) error {
	if len(e.opts.To) == 0 {
		return errors.New("no recipients")
	}
	msg, err := e.message(d)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	conn, err := e.dial(ctx)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, e.opts.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if e.opts.StartTLS && !e.opts.ImplicitTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return errors.New("server does not support STARTTLS")
		}
		if err := c.StartTLS(&tls.Config{ServerName: e.opts.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if e.opts.Username != "" {
		auth := smtp.PlainAuth("", e.opts.Username, e.opts.Password, e.opts.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(e.opts.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, to := range e.opts.To {
		if err := c.Rcpt(to); err != nil {
			return fmt.Errorf("rcpt %s: %w", to, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return c.Quit()
}

func (e *Email) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(e.opts.Host, strconv.Itoa(e.opts.Port))
	dialer := &net.Dialer{}
	if e.opts.ImplicitTLS {
		td := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: e.opts.Host}}
		return td.DialContext(ctx, "tcp", addr)
	}
	return dialer.DialContext(ctx, "tcp", addr)
}

// message builds the RFC 5322 message. HTML digests are sent as text/html,
// everything else as plain text.
func (e *Email) message(d Digest) ([]byte, error) {
	contentType := "text/plain"
	body := d.plain()
	if d.Format == render.HTML {
		contentType = "text/html"
		body = d.Body
	}

	var b bytes.Buffer
	headers := [][2]string{
		{"From", e.opts.From},
		{"To", strings.Join(e.opts.To, ", ")},
		{"Subject", mime.QEncoding.Encode("utf-8", d.Title)},
		{"Date", e.now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", contentType + "; charset=UTF-8"},
		{"Content-Transfer-Encoding", "quoted-printable"},
	}
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&b)
	if _, err := qp.Write([]byte(crlf(body))); err != nil {
		return nil, fmt.Errorf("encoding body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("encoding body: %w", err)
	}
	return b.Bytes(), nil
}

func crlf(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}
