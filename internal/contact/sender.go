package contact

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/greek-portfolio/internal/clock"
)

// Message is an accepted, trimmed submission.
type Message struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Sender delivers a message somewhere.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

var (
	ErrSimulatedFailure = errors.New("contact: simulated delivery failure")
	ErrNotConfigured    = errors.New("contact: SMTP credentials not configured")
)

// SimulatedSender pretends to deliver after a delay and fails a
// configurable fraction of the time.
type SimulatedSender struct {
	Delay       time.Duration
	FailureRate float64
	Clock       clock.Clock
	// Roll returns a uniform sample in [0, 1); nil uses math/rand.
	Roll func() float64
}

func (s *SimulatedSender) Send(ctx context.Context, msg Message) error {
	if s.Delay > 0 {
		c := s.Clock
		if c == nil {
			c = clock.Real{}
		}
		done := make(chan struct{})
		timer := c.AfterFunc(s.Delay, func() { close(done) })
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-done:
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	roll := s.Roll
	if roll == nil {
		roll = rand.Float64
	}
	if s.FailureRate > 0 && roll() < s.FailureRate {
		return ErrSimulatedFailure
	}
	return nil
}

// SMTPConfig addresses the outgoing mail server.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

// SMTPSender mails each message to the site owner.
type SMTPSender struct {
	Config SMTPConfig
	// send is smtp.SendMail outside tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender builds a sender for cfg.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{Config: cfg, send: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	cfg := s.Config
	if cfg.User == "" || cfg.Pass == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	if err := s.send(cfg.Host+":"+cfg.Port, auth, cfg.User, []string{cfg.To}, compose(cfg, msg)); err != nil {
		return fmt.Errorf("send mail via %s: %w", cfg.Host, err)
	}
	return nil
}

var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

func compose(cfg SMTPConfig, msg Message) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s", headerSafe.Replace(msg.Name))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form (%s)
`, msg.Name, msg.Email, msg.Body, msg.ID)

	return []byte("To: " + cfg.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + cfg.User + "\r\n" +
		"Reply-To: " + msg.Email + "\r\n" +
		"\r\n" +
		body + "\r\n")
}
