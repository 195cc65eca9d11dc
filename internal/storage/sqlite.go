package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/spigell/skill-screener/internal/recruiting"
)

// sqliteTime sorts lexically in the same order as the instants it encodes.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database file (or any modernc DSN) with foreign
// keys enabled and a single connection.
func OpenSQLite(ctx context.Context, dsn string) (Store, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(ctx, goose.DialectSQLite3, "sqlite", db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *sqliteStore) SaveCandidate(ctx context.Context, c *recruiting.Candidate) (int64, error) {
	if c == nil {
		return 0, errors.New("candidate is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO candidates (name, email, role, phone, location, summary, total_experience)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) WHERE email <> '' DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			phone = excluded.phone,
			location = excluded.location,
			summary = excluded.summary,
			total_experience = excluded.total_experience,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		RETURNING id`,
		c.Name, strings.TrimSpace(c.Email), c.Role, c.Phone, c.Location, c.Summary, nullFloat(c.TotalExperience),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert candidate: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM candidate_skills WHERE candidate_id = ?`, id); err != nil {
		return 0, fmt.Errorf("clear candidate skills: %w", err)
	}
	for i, skill := range cleanSkills(c.Skills) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO candidate_skills (candidate_id, position, skill) VALUES (?, ?, ?)`,
			id, i, skill,
		); err != nil {
			return 0, fmt.Errorf("insert skill %q: %w", skill, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit candidate: %w", err)
	}

	c.ID = id
	return id, nil
}

func (s *sqliteStore) GetCandidate(ctx context.Context, id int64) (*recruiting.Candidate, error) {
	c := &recruiting.Candidate{ID: id}
	var experience sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT name, email, role, phone, location, summary, total_experience
		FROM candidates WHERE id = ?`, id,
	).Scan(&c.Name, &c.Email, &c.Role, &c.Phone, &c.Location, &c.Summary, &experience)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate %d: %w", id, err)
	}
	if experience.Valid {
		c.TotalExperience = &experience.Float64
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT skill FROM candidate_skills WHERE candidate_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get candidate skills: %w", err)
	}
	defer rows.Close()

	c.Skills = []string{}
	for rows.Next() {
		var skill string
		if err := rows.Scan(&skill); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		c.Skills = append(c.Skills, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skills: %w", err)
	}

	return c, nil
}

func (s *sqliteStore) SaveEvaluation(ctx context.Context, e *recruiting.Evaluation) error {
	row, err := toRow(e)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluation_logs (
			id, candidate_id, job_title, weighted_score, match_percentage, experience,
			meets_experience, qualified, notified, reasons, report, matches, evaluated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			qualified = excluded.qualified,
			notified = excluded.notified,
			reasons = excluded.reasons`,
		row.ID, row.CandidateID, row.JobTitle, row.WeightedScore, row.MatchPercentage, row.Experience,
		row.MeetsExperience, row.Qualified, row.Notified,
		string(row.Reasons), string(row.Report), string(row.Matches),
		e.EvaluatedAt.UTC().Format(sqliteTime),
	)
	if err != nil {
		return fmt.Errorf("insert evaluation for %q: %w", row.JobTitle, err)
	}
	return nil
}

func (s *sqliteStore) ListEvaluations(ctx context.Context, candidateID int64) ([]*recruiting.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, candidate_id, job_title, weighted_score, match_percentage, experience,
			meets_experience, qualified, notified, reasons, report, matches, evaluated_at
		FROM evaluation_logs
		WHERE candidate_id = ?
		ORDER BY evaluated_at DESC, job_title`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []*recruiting.Evaluation
	for rows.Next() {
		var (
			row                      evaluationRow
			reasons, report, matches string
			evaluatedAt              string
		)
		if err := rows.Scan(
			&row.ID, &row.CandidateID, &row.JobTitle, &row.WeightedScore, &row.MatchPercentage, &row.Experience,
			&row.MeetsExperience, &row.Qualified, &row.Notified, &reasons, &report, &matches, &evaluatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		row.Reasons, row.Report, row.Matches = []byte(reasons), []byte(report), []byte(matches)

		e, err := row.toEvaluation()
		if err != nil {
			return nil, err
		}
		if e.EvaluatedAt, err = time.Parse(sqliteTime, evaluatedAt); err != nil {
			return nil, fmt.Errorf("parse evaluated_at %q: %w", evaluatedAt, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}

	return out, nil
}

func (s *sqliteStore) InvitedJobs(ctx context.Context, candidateID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT job_title FROM evaluation_logs
		WHERE candidate_id = ? AND notified = 1
		ORDER BY job_title`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list invited jobs: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan job title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
