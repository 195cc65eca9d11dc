package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/skill-screener/internal/recruiting"
)

// Filter represents a single filtering step applied to evaluations.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, e *recruiting.Evaluations) (*recruiting.Evaluations, Step, error)
}

// History reports the jobs a candidate was already invited to.
type History interface {
	InvitedJobs(ctx context.Context, candidateID int64) ([]string, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger      *zap.Logger
	History     History
	CandidateID int64
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MinimumMatchScore float64
	ExcludedJobs      []string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns the standard pipeline in execution order.
func Default(ignoreInvited bool) []Filter {
	return []Filter{
		NewSkillScore(),
		NewExperience(),
		NewExcludeJobs(),
		NewInvitedHistory(ignoreInvited),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the evaluations
// that survived every enabled step. Dropped evaluations are rejected in place
// so callers holding the full list see the reason.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, e *recruiting.Evaluations) (*recruiting.Evaluations, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	// Work on a copy of the slice so the caller's list keeps every item.
	left := &recruiting.Evaluations{}
	if e != nil {
		left.Items = append(left.Items, e.Items...)
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, left)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		left = next
	}

	return left, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// drop removes the evaluations for which reject returns a non-empty reason,
// marking each with it.
func drop(e *recruiting.Evaluations, reject func(*recruiting.Evaluation) string) []string {
	var dropped []string
	kept := e.Items[:0]
	for _, item := range e.Items {
		reason := reject(item)
		if reason == "" {
			kept = append(kept, item)
			continue
		}
		item.Reject(reason)
		dropped = append(dropped, item.Job.Title)
	}
	e.Items = kept
	return dropped
}
