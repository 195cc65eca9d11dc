package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/spigell/skill-screener/internal/recruiting"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrNotFound is returned when a candidate does not exist.
var ErrNotFound = errors.New("not found")

//go:embed migrations
var migrations embed.FS

// Store persists candidates and their evaluation history.
type Store interface {
	// SaveCandidate inserts the candidate or, when a candidate with the same
	// email exists, updates it. The candidate ID is set on success.
	SaveCandidate(ctx context.Context, c *recruiting.Candidate) (int64, error)
	GetCandidate(ctx context.Context, id int64) (*recruiting.Candidate, error)
	SaveEvaluation(ctx context.Context, e *recruiting.Evaluation) error
	// ListEvaluations returns the candidate's evaluations, newest first.
	ListEvaluations(ctx context.Context, candidateID int64) ([]*recruiting.Evaluation, error)
	// InvitedJobs returns the titles of jobs the candidate was notified about.
	InvitedJobs(ctx context.Context, candidateID int64) ([]string, error)
	Close() error
}

type Config struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=postgres postgresql pgx sqlite sqlite3"`
	DSN    string `mapstructure:"dsn"`
}

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, cfg Config) (Store, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("database dsn is required")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres, "postgresql", "pgx":
		return OpenPostgres(ctx, dsn)
	case DriverSQLite, "sqlite3", "":
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func migrate(ctx context.Context, dialect goose.Dialect, dir string, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations/"+dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// evaluationRow is the column form of an evaluation shared by both backends.
type evaluationRow struct {
	ID              string
	CandidateID     int64
	JobTitle        string
	WeightedScore   float64
	MatchPercentage float64
	Experience      float64
	MeetsExperience bool
	Qualified       bool
	Notified        bool
	Reasons         []byte
	Report          []byte
	Matches         []byte
}

func toRow(e *recruiting.Evaluation) (evaluationRow, error) {
	if e == nil || e.Job == nil {
		return evaluationRow{}, errors.New("evaluation with a job is required")
	}
	if e.CandidateID == 0 {
		return evaluationRow{}, errors.New("evaluation has no candidate id")
	}

	reasons := e.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	row := evaluationRow{
		ID:              e.ID.String(),
		CandidateID:     e.CandidateID,
		JobTitle:        e.Job.Title,
		WeightedScore:   e.Report.WeightedScore,
		MatchPercentage: e.Report.MatchPercentage,
		Experience:      e.Experience,
		MeetsExperience: e.MeetsExperience,
		Qualified:       e.Qualified,
		Notified:        e.Notified,
	}

	var err error
	if row.Reasons, err = json.Marshal(reasons); err != nil {
		return row, fmt.Errorf("marshal reasons: %w", err)
	}
	if row.Report, err = json.Marshal(e.Report); err != nil {
		return row, fmt.Errorf("marshal report: %w", err)
	}
	if row.Matches, err = json.Marshal(e.Matches); err != nil {
		return row, fmt.Errorf("marshal matches: %w", err)
	}
	return row, nil
}

func (r evaluationRow) toEvaluation() (*recruiting.Evaluation, error) {
	e := &recruiting.Evaluation{
		CandidateID:     r.CandidateID,
		Job:             &recruiting.Job{Title: r.JobTitle},
		Score:           r.WeightedScore,
		Experience:      r.Experience,
		MeetsExperience: r.MeetsExperience,
		Qualified:       r.Qualified,
		Notified:        r.Notified,
	}

	if err := e.ID.UnmarshalText([]byte(r.ID)); err != nil {
		return nil, fmt.Errorf("parse evaluation id %q: %w", r.ID, err)
	}
	if err := json.Unmarshal(r.Reasons, &e.Reasons); err != nil {
		return nil, fmt.Errorf("unmarshal reasons: %w", err)
	}
	if len(e.Reasons) == 0 {
		e.Reasons = nil
	}
	if err := json.Unmarshal(r.Report, &e.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	if err := json.Unmarshal(r.Matches, &e.Matches); err != nil {
		return nil, fmt.Errorf("unmarshal matches: %w", err)
	}
	return e, nil
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
