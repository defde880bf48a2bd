package email

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/gomail.v2"
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Service interface {
	Send(ctx context.Context, msg Message) error
}

// Config is the mail identity used for appointment notices.
type Config struct {
	From string `envconfig:"FROM" default:"clinic@example.com"`
	To   string `envconfig:"TO" default:"frontdesk@example.com"`
}

// ConfigFromEnv reads MAIL_FROM and MAIL_TO.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("MAIL", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read mail config: %w", err)
	}
	return cfg, nil
}

// Spool renders each message in RFC 5322 form onto a writer instead of dialing a server.
type Spool struct {
	mu  sync.Mutex
	out io.Writer
}

func NewSpool(out io.Writer) *Spool {
	return &Spool{out: out}
}

func (s *Spool) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.From == "" || msg.To == "" {
		return fmt.Errorf("sender and recipient are required")
	}

	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := m.WriteTo(s.out); err != nil {
		return fmt.Errorf("failed to spool message: %w", err)
	}
	_, err := io.WriteString(s.out, "\r\n")
	return err
}
