package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/skill-screener/internal/matching"
	"github.com/spigell/skill-screener/internal/recruiting"
)

type experienceFilter struct {
	disabled bool
	reason   string
}

// NewExperience creates a filter that drops evaluations where the candidate
// has less experience than the job requires.
func NewExperience() Filter {
	return &experienceFilter{}
}

func (f *experienceFilter) Name() string { return "experience" }

func (f *experienceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *experienceFilter) IsEnabled() bool { return !f.disabled }

func (f *experienceFilter) Validate(*Config) error { return nil }

func (f *experienceFilter) Apply(_ context.Context, deps Deps, e *recruiting.Evaluations) (*recruiting.Evaluations, Step, error) {
	initial := e.Len()

	dropped := drop(e, func(item *recruiting.Evaluation) string {
		if item.Experience < item.Job.MinExperience {
			return matching.ReasonInsufficientExperience
		}
		return ""
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding jobs requiring more experience",
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", e.Len()),
		)
	}

	return e, Step{Initial: initial, Dropped: len(dropped), Left: e.Len()}, nil
}

func (f *experienceFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
