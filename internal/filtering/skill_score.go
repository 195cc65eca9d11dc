package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/skill-screener/internal/matching"
	"github.com/spigell/skill-screener/internal/recruiting"
)

type skillScoreFilter struct {
	disabled  bool
	reason    string
	threshold float64
}

// NewSkillScore creates a filter that drops evaluations whose weighted score
// is below the configured minimum.
func NewSkillScore() Filter {
	return &skillScoreFilter{}
}

func (f *skillScoreFilter) Name() string { return "skill_score" }

func (f *skillScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *skillScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *skillScoreFilter) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if cfg.MinimumMatchScore < 0 || cfg.MinimumMatchScore > 100 {
		return fmt.Errorf("minimum match score must be within [0, 100], got %.2f", cfg.MinimumMatchScore)
	}
	f.threshold = cfg.MinimumMatchScore
	return nil
}

func (f *skillScoreFilter) Apply(_ context.Context, deps Deps, e *recruiting.Evaluations) (*recruiting.Evaluations, Step, error) {
	initial := e.Len()

	dropped := drop(e, func(item *recruiting.Evaluation) string {
		switch {
		case item.Report.TotalRequired == 0:
			return matching.ReasonNoRequiredSkills
		case item.Score < f.threshold:
			return matching.ReasonLowSkillMatch
		}
		return ""
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding jobs with low skill match",
			zap.Float64("minimum_match_score", f.threshold),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", e.Len()),
		)
	}

	return e, Step{Initial: initial, Dropped: len(dropped), Left: e.Len()}, nil
}

func (f *skillScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_match_score": fmt.Sprintf("%.2f", f.threshold)},
	}
}
