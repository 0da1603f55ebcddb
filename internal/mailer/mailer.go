package mailer

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

const (
	connectTimeout  = 15 * time.Second
	greetingTimeout = 10 * time.Second
)

// Config holds the SMTP endpoint and credentials.
type Config struct {
	Host string
	Port int
	User string
	Pass string
}

// SMTP sends messages over a fresh SMTP connection per call. Connections are
// never pooled or reused; each Send dials, transmits and quits.
type SMTP struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTP {
	return &SMTP{cfg: cfg}
}

// implicitTLS reports whether the connection is TLS-wrapped from the first
// byte. Port 465 is SMTPS; everything else starts in cleartext and may
// upgrade via STARTTLS.
func (s *SMTP) implicitTLS() bool {
	return s.cfg.Port == 465
}

// Send delivers msg and returns the assigned message ID.
// Implements Sender.
func (s *SMTP) Send(msg Message) (SendResult, error) {
	m, id, err := s.buildMessage(msg)
	if err != nil {
		return SendResult{}, err
	}

	sc, err := s.dial()
	if err != nil {
		return SendResult{}, err
	}
	defer sc.Close()

	if err := gomail.Send(sc, m); err != nil {
		return SendResult{}, fmt.Errorf("smtp send: %w", err)
	}
	return SendResult{MessageID: id}, nil
}

// buildMessage converts a Message into a gomail message with a generated
// Message-ID. Attachment content arrives base64-encoded and is decoded here;
// filenames are passed through verbatim.
func (s *SMTP) buildMessage(msg Message) (*gomail.Message, string, error) {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", splitRecipients(msg.To)...)
	m.SetHeader("Subject", msg.Subject)

	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.Host)
	m.SetHeader("Message-ID", id)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}

	for _, att := range msg.Attachments {
		data, err := base64.StdEncoding.DecodeString(att.Content)
		if err != nil {
			return nil, "", fmt.Errorf("decode attachment %q: %w", att.Filename, err)
		}
		m.Attach(att.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	return m, id, nil
}

// dial opens the SMTP session. Connection establishment is bounded by
// connectTimeout and the server greeting by greetingTimeout; the data phase
// carries no deadline of its own so large attachments are not cut off.
func (s *SMTP) dial() (gomail.SendCloser, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return nil, fmt.Errorf("smtp connect %s: %w", addr, err)
	}

	if s.implicitTLS() {
		conn = tls.Client(conn, &tls.Config{ServerName: s.cfg.Host})
	}

	// smtp.NewClient blocks on the server greeting.
	_ = conn.SetDeadline(time.Now().Add(greetingTimeout))
	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp greeting %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	if !s.implicitTLS() {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
				c.Close()
				return nil, fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}

	if s.cfg.User != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
			if err := c.Auth(auth); err != nil {
				c.Close()
				return nil, fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	return &smtpSender{c: c}, nil
}

// smtpSender adapts *smtp.Client to the gomail.SendCloser interface.
type smtpSender struct {
	c *smtp.Client
}

func (s *smtpSender) Send(from string, to []string, msg io.WriterTo) error {
	if err := s.c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := s.c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := s.c.Data()
	if err != nil {
		return err
	}
	if _, err := msg.WriteTo(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (s *smtpSender) Close() error {
	return s.c.Quit()
}
