package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skill-screener/internal/recruiting"
)

// ErrNoRecipient is returned for candidates without an email address.
var ErrNoRecipient = errors.New("candidate has no email address")

// Invitation asks a qualified candidate to take the job's technical assessment.
type Invitation struct {
	Candidate  *recruiting.Candidate
	Evaluation *recruiting.Evaluation
}

func (i Invitation) validate() error {
	if i.Candidate == nil || i.Evaluation == nil || i.Evaluation.Job == nil {
		return errors.New("invitation requires a candidate and an evaluated job")
	}
	if strings.TrimSpace(i.Candidate.Email) == "" {
		return ErrNoRecipient
	}
	return nil
}

// Sender delivers invitations.
type Sender interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}

// DryRunSender logs invitations instead of delivering them.
type DryRunSender struct {
	logger *zap.Logger
}

func NewDryRun(logger *zap.Logger) *DryRunSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRunSender{logger: logger}
}

func (s *DryRunSender) SendInvitation(_ context.Context, inv Invitation) error {
	if err := inv.validate(); err != nil {
		return err
	}

	msg, err := Compose("dry-run@localhost", inv)
	if err != nil {
		return fmt.Errorf("compose invitation: %w", err)
	}

	s.logger.Info("dry run: invitation not sent",
		zap.String("to", inv.Candidate.Email),
		zap.String("subject", Subject(inv)),
		zap.Int("message_bytes", len(msg)),
	)
	return nil
}
