package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/sony/gobreaker"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers HTML mail. Consecutive failures open a circuit breaker
// so a dead mail server fails fast instead of stalling the workers.
type SMTPMailer struct {
	cfg     SMTPConfig
	breaker *gobreaker.CircuitBreaker
}

func NewSMTPMailer(cfg SMTPConfig, log logger.ZapLogger) *SMTPMailer {
	settings := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &SMTPMailer{cfg: cfg, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (m *SMTPMailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.Username != "" && m.cfg.Password != "" && m.cfg.From != ""
}

func (m *SMTPMailer) Send(ctx context.Context, recipients []string, subject, html string) error {
	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.send(ctx, recipients, subject, html)
	})
	return err
}

func (m *SMTPMailer) send(ctx context.Context, recipients []string, subject, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
