package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/panjf2000/ants/v2"
	"gopkg.in/gomail.v2"

	"github.com/wcckavaliers/scorebook/internal/platform/logging"
)

const defaultPoolSize = 4

type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	PoolSize int
}

// Mailer sends notification emails through a bounded worker pool. Delivery
// is fire and forget: a full pool or an SMTP failure is logged and dropped,
// never surfaced to the caller.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	to     []string
	pool   *ants.Pool
	logger *logging.Logger
}

func NewMailer(cfg MailerConfig, logger *logging.Logger) (*Mailer, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" || len(cfg.To) == 0 {
		return nil, fmt.Errorf("sender and at least one recipient are required")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create mail worker pool: %w", err)
	}

	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.To,
		pool:   pool,
		logger: logger,
	}, nil
}

func (m *Mailer) Notify(ctx context.Context, subject, body string) {
	err := m.pool.Submit(func() {
		message := gomail.NewMessage()
		message.SetHeader("From", m.from)
		message.SetHeader("To", m.to...)
		message.SetHeader("Subject", subject)
		message.SetBody("text/plain", body)

		if sendErr := m.dialer.DialAndSend(message); sendErr != nil {
			m.logger.Warn("send notification mail failed", "subject", subject, "error", sendErr)
		}
	})
	if err != nil {
		m.logger.WarnContext(ctx, "notification dropped, mail pool saturated", "subject", subject, "error", err)
	}
}

func (m *Mailer) Close() {
	m.pool.Release()
}
