package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/skill-screener/internal/filtering"
	"github.com/spigell/skill-screener/internal/logger"
	"github.com/spigell/skill-screener/internal/matching"
	"github.com/spigell/skill-screener/internal/notify"
	"github.com/spigell/skill-screener/internal/recruiting"
)

const (
	// DefaultMinimumMatchScore is the threshold used when the config sets none.
	DefaultMinimumMatchScore = 60.0
	defaultWorkers           = 4
)

// Store persists evaluation logs and knows which jobs a candidate was
// already invited to.
type Store interface {
	SaveEvaluation(ctx context.Context, e *recruiting.Evaluation) error
	InvitedJobs(ctx context.Context, candidateID int64) ([]string, error)
}

type Config struct {
	MinimumMatchScore float64  `mapstructure:"minimum-match-score" validate:"gte=0,lte=100"`
	Workers           int      `mapstructure:"workers" validate:"gte=0"`
	ExcludedJobs      []string `mapstructure:"excluded-jobs"`
	DisabledFilters   []string `mapstructure:"disabled-filters"`
	IgnoreInvited     bool     `mapstructure:"ignore-invited"`
}

type Deps struct {
	Logger  *zap.Logger
	Matcher *matching.Matcher
	Sender  notify.Sender
	Store   Store
}

// Evaluator screens a candidate against a set of jobs.
type Evaluator struct {
	cfg     Config
	logger  *zap.Logger
	matcher *matching.Matcher
	sender  notify.Sender
	store   Store
}

// Result holds every evaluation of one run. Qualified is the subset that
// passed all filters.
type Result struct {
	Candidate         *recruiting.Candidate
	Evaluations       *recruiting.Evaluations
	Qualified         *recruiting.Evaluations
	Filters           []filtering.Status
	NotificationsSent int
}

// New validates cfg and builds an evaluator. MinimumMatchScore is used as
// given, so zero lets every scored job pass the score check.
func New(cfg Config, deps Deps) (*Evaluator, error) {
	if deps.Matcher == nil {
		return nil, errors.New("matcher is required")
	}
	if cfg.MinimumMatchScore < 0 || cfg.MinimumMatchScore > 100 {
		return nil, fmt.Errorf("minimum match score must be within [0, 100], got %.2f", cfg.MinimumMatchScore)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Evaluator{
		cfg:     cfg,
		logger:  log,
		matcher: deps.Matcher,
		sender:  deps.Sender,
		store:   deps.Store,
	}, nil
}

// Evaluate screens the candidate, invites them to every qualified job and
// records the outcome.
func (e *Evaluator) Evaluate(ctx context.Context, candidate *recruiting.Candidate, jobs recruiting.Jobs) (*Result, error) {
	result, err := e.Screen(ctx, candidate, jobs)
	if err != nil {
		return nil, err
	}

	notifyErr := e.Notify(ctx, result)
	if err := e.Record(ctx, result); err != nil {
		return result, errors.Join(notifyErr, err)
	}
	return result, notifyErr
}

// Screen scores every job and runs the filter pipeline. Nothing is sent or
// stored.
func (e *Evaluator) Screen(ctx context.Context, candidate *recruiting.Candidate, jobs recruiting.Jobs) (*Result, error) {
	if candidate == nil {
		return nil, errors.New("candidate is required")
	}
	if err := jobs.Validate(); err != nil {
		return nil, fmt.Errorf("jobs: %w", err)
	}

	log := logger.WithCandidate(e.logger, candidate.ID, candidate.Label())

	experience, ok := candidate.ExperienceYears()
	if !ok {
		log.Warn("candidate experience unknown, defaulting to 0")
	}
	if len(candidate.Skills) == 0 {
		log.Warn("candidate has no skills, every job will score 0")
	}

	items := make([]*recruiting.Evaluation, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := e.matcher.Evaluate(candidate.Skills, job.RequiredSkills)
			items[i] = recruiting.NewEvaluation(candidate.ID, job, result, experience, e.cfg.MinimumMatchScore)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate jobs: %w", err)
	}

	all := &recruiting.Evaluations{Items: items}
	for _, item := range items {
		log.With(logger.JobFields(item.Job.Title)...).Info("job evaluated",
			zap.Float64("score", item.Score),
			zap.String("matched", fmt.Sprintf("%d/%d", item.Report.MatchedCount, item.Report.TotalRequired)),
			zap.Float64("experience", item.Experience),
			zap.Bool("qualified", item.Qualified),
		)
	}

	steps := filtering.Default(e.cfg.IgnoreInvited)
	for _, name := range e.cfg.DisabledFilters {
		filtering.DisableByName(steps, strings.TrimSpace(name), "disabled by config")
	}

	deps := filtering.Deps{Logger: log, CandidateID: candidate.ID}
	if e.store != nil {
		deps.History = e.store
	}

	survivors, err := filtering.Run(ctx, &filtering.Config{
		MinimumMatchScore: e.cfg.MinimumMatchScore,
		ExcludedJobs:      e.cfg.ExcludedJobs,
	}, deps, steps, all)
	if err != nil {
		return nil, fmt.Errorf("filter evaluations: %w", err)
	}

	qualified := survivors.Qualified()
	log.Info("screening finished",
		zap.Int("jobs", all.Len()),
		zap.Int("qualified", qualified.Len()),
	)

	return &Result{
		Candidate:   candidate,
		Evaluations: all,
		Qualified:   qualified,
		Filters:     filtering.Describe(steps),
	}, nil
}

// Notify invites the candidate to every qualified job and marks the
// evaluations as notified. Delivery failures are collected and do not stop
// the remaining invitations.
func (e *Evaluator) Notify(ctx context.Context, result *Result) error {
	if result == nil || result.Qualified.Len() == 0 {
		return nil
	}
	if e.sender == nil {
		return errors.New("no invitation sender configured")
	}

	log := logger.WithCandidate(e.logger, result.Candidate.ID, result.Candidate.Label())

	var errs []error
	for _, item := range result.Qualified.Items {
		if item.Notified {
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		err := e.sender.SendInvitation(ctx, notify.Invitation{Candidate: result.Candidate, Evaluation: item})
		if err != nil {
			log.With(logger.JobFields(item.Job.Title)...).Error("invitation failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", item.Job.Title, err))
			continue
		}

		item.Notified = true
		result.NotificationsSent++
	}

	return errors.Join(errs...)
}

// Record stores every evaluation of the result. The candidate must already
// be saved.
func (e *Evaluator) Record(ctx context.Context, result *Result) error {
	if e.store == nil || result == nil {
		return nil
	}
	if result.Candidate.ID == 0 {
		return errors.New("candidate must be saved before recording evaluations")
	}

	for _, item := range result.Evaluations.Items {
		if err := e.store.SaveEvaluation(ctx, item); err != nil {
			return fmt.Errorf("save evaluation for %q: %w", item.Job.Title, err)
		}
	}

	e.logger.Debug("evaluations recorded",
		zap.Int64(logger.FieldCandidateID, result.Candidate.ID),
		zap.Int("count", result.Evaluations.Len()),
	)
	return nil
}
