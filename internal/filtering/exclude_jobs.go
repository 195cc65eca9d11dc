package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skill-screener/internal/recruiting"
)

// ReasonExcludedJob marks jobs listed in the excluded-jobs config.
const ReasonExcludedJob = "job excluded by config"

type excludeJobsFilter struct {
	titles []string
}

// NewExcludeJobs creates a filter that removes jobs listed in the config.
func NewExcludeJobs() Filter {
	return &excludeJobsFilter{}
}

func (f *excludeJobsFilter) Name() string { return "exclude_jobs" }

func (f *excludeJobsFilter) Disable(string) {}

func (f *excludeJobsFilter) IsEnabled() bool { return true }

func (f *excludeJobsFilter) Validate(cfg *Config) error {
	f.titles = nil
	if cfg != nil {
		f.titles = append(f.titles, cfg.ExcludedJobs...)
	}
	return nil
}

func (f *excludeJobsFilter) Apply(_ context.Context, deps Deps, e *recruiting.Evaluations) (*recruiting.Evaluations, Step, error) {
	initial := e.Len()
	if len(f.titles) == 0 {
		return e, Step{Initial: initial, Dropped: 0, Left: e.Len()}, nil
	}

	for _, title := range f.titles {
		if item := e.FindByTitle(title); item != nil {
			item.Reject(ReasonExcludedJob)
		}
	}

	excluded := e.Exclude(f.titles)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by config",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", e.Len()),
		)
	}

	return e, Step{Initial: initial, Dropped: len(excluded), Left: e.Len()}, nil
}

func (f *excludeJobsFilter) Status() Status {
	details := map[string]string{}
	if len(f.titles) > 0 {
		details["jobs"] = strings.Join(f.titles, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
