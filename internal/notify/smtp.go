package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultSMTPPort      = 587
	defaultRatePerMinute = 30
)

type SMTPConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password" json:"-"`
	From          string `mapstructure:"from" validate:"omitempty,email"`
	RatePerMinute int    `mapstructure:"rate-per-minute" validate:"gte=0"`
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers invitations over SMTP. net/smtp upgrades the
// connection with STARTTLS when the server offers it.
type SMTPSender struct {
	addr    string
	from    string
	auth    smtp.Auth
	limiter *rate.Limiter
	send    sendFunc
	logger  *zap.Logger
}

func NewSMTP(cfg SMTPConfig, logger *zap.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	if _, err := mail.ParseAddress(from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}

	port := cfg.Port
	if port == 0 {
		port = defaultSMTPPort
	}

	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = defaultRatePerMinute
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPSender{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		from:    from,
		auth:    auth,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		send:    smtp.SendMail,
		logger:  logger,
	}, nil
}

func (s *SMTPSender) SendInvitation(ctx context.Context, inv Invitation) error {
	if err := inv.validate(); err != nil {
		return err
	}

	to, err := mail.ParseAddress(inv.Candidate.Email)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", inv.Candidate.Email, err)
	}

	msg, err := Compose(s.from, inv)
	if err != nil {
		return fmt.Errorf("compose invitation: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for send slot: %w", err)
	}

	sender, _ := mail.ParseAddress(s.from)
	if err := s.send(s.addr, s.auth, sender.Address, []string{to.Address}, msg); err != nil {
		return fmt.Errorf("send invitation to %s: %w", to.Address, err)
	}

	s.logger.Info("invitation sent",
		zap.String("to", to.Address),
		zap.String("job", inv.Evaluation.Job.Title),
	)
	return nil
}
