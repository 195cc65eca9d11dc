package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/skill-screener/internal/recruiting"
)

const (
	// ReasonAlreadyInvited marks jobs the candidate was notified about in an earlier run.
	ReasonAlreadyInvited = "already invited"

	forceFlagSetMsg = "force flag is set"
)

type invitedHistoryFilter struct {
	ignore bool
}

// NewInvitedHistory creates a filter that removes jobs the candidate was
// already invited to. With ignore set the history is not consulted.
func NewInvitedHistory(ignore bool) Filter {
	return &invitedHistoryFilter{ignore: ignore}
}

func (f *invitedHistoryFilter) Name() string { return "invited_history" }

func (f *invitedHistoryFilter) Disable(string) {}

func (f *invitedHistoryFilter) IsEnabled() bool { return true }

func (f *invitedHistoryFilter) Validate(*Config) error { return nil }

func (f *invitedHistoryFilter) Apply(ctx context.Context, deps Deps, e *recruiting.Evaluations) (*recruiting.Evaluations, Step, error) {
	initial := e.Len()
	if f.ignore {
		if deps.Logger != nil {
			deps.Logger.Info("ignoring previous invitations", zap.String("reason", forceFlagSetMsg))
		}
		return e, Step{Initial: initial, Dropped: 0, Left: e.Len()}, nil
	}

	// A candidate that was never stored has no history.
	if deps.History == nil || deps.CandidateID == 0 || initial == 0 {
		return e, Step{Initial: initial, Dropped: 0, Left: e.Len()}, nil
	}

	invited, err := deps.History.InvitedJobs(ctx, deps.CandidateID)
	if err != nil {
		return e, Step{}, fmt.Errorf("get invited jobs: %w", err)
	}

	for _, title := range invited {
		if item := e.FindByTitle(title); item != nil {
			item.Reject(ReasonAlreadyInvited)
		}
	}

	excluded := e.Exclude(invited)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding jobs the candidate was already invited to",
			zap.Int64("candidate_id", deps.CandidateID),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", e.Len()),
		)
	}

	return e, Step{Initial: initial, Dropped: len(excluded), Left: e.Len()}, nil
}

func (f *invitedHistoryFilter) Status() Status {
	details := map[string]string{
		"exclude_invited": strconv.FormatBool(!f.ignore),
	}
	reason := ""
	if f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason, Details: details}
}
