package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// ErrDisabled is returned by a Sender built without an SMTP host.
var ErrDisabled = errors.New("mail delivery is not configured")

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type SMTP struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewSMTP(cfg Config, logger *zap.Logger) *SMTP {
	return &SMTP{cfg: cfg, logger: logger, now: time.Now}
}

func (s *SMTP) Enabled() bool {
	return s.cfg.Host != "" && s.cfg.From != ""
}

func (s *SMTP) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(30 * time.Second),
	}
	if s.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.User),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return gomail.NewClient(s.cfg.Host, opts...)
}

// Send delivers m in a single attempt. Callers treat failures as best
// effort and report them instead of retrying.
func (s *SMTP) Send(ctx context.Context, m Message) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	msg, err := newMsg(Sender{Name: s.cfg.FromName, Address: s.cfg.From}, m, s.now())
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Info("mail sent",
		zap.Strings("to", m.To),
		zap.String("subject", m.Subject),
		zap.Int("attachments", len(m.Attachments)),
	)
	return nil
}
