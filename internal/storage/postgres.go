package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/spigell/skill-screener/internal/recruiting"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a pgx connection pool, pings it and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	err = migrate(ctx, goose.DialectPostgres, "postgres", db)
	db.Close()
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) SaveCandidate(ctx context.Context, c *recruiting.Candidate) (int64, error) {
	if c == nil {
		return 0, errors.New("candidate is required")
	}

	var id int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO candidates (name, email, role, phone, location, summary, total_experience)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (email) WHERE email <> '' DO UPDATE SET
				name = EXCLUDED.name,
				role = EXCLUDED.role,
				phone = EXCLUDED.phone,
				location = EXCLUDED.location,
				summary = EXCLUDED.summary,
				total_experience = EXCLUDED.total_experience,
				updated_at = now()
			RETURNING id`,
			c.Name, strings.TrimSpace(c.Email), c.Role, c.Phone, c.Location, c.Summary, c.TotalExperience,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert candidate: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM candidate_skills WHERE candidate_id = $1`, id); err != nil {
			return fmt.Errorf("clear candidate skills: %w", err)
		}

		skills := cleanSkills(c.Skills)
		if len(skills) == 0 {
			return nil
		}

		rows := make([][]any, 0, len(skills))
		for i, skill := range skills {
			rows = append(rows, []any{id, i, skill})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"candidate_skills"},
			[]string{"candidate_id", "position", "skill"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("insert candidate skills: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.ID = id
	return id, nil
}

func (s *postgresStore) GetCandidate(ctx context.Context, id int64) (*recruiting.Candidate, error) {
	c := &recruiting.Candidate{ID: id}
	err := s.pool.QueryRow(ctx, `
		SELECT name, email, role, phone, location, summary, total_experience
		FROM candidates WHERE id = $1`, id,
	).Scan(&c.Name, &c.Email, &c.Role, &c.Phone, &c.Location, &c.Summary, &c.TotalExperience)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT skill FROM candidate_skills WHERE candidate_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get candidate skills: %w", err)
	}
	skills, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan candidate skills: %w", err)
	}
	c.Skills = skills

	return c, nil
}

func (s *postgresStore) SaveEvaluation(ctx context.Context, e *recruiting.Evaluation) error {
	row, err := toRow(e)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO evaluation_logs (
			id, candidate_id, job_title, weighted_score, match_percentage, experience,
			meets_experience, qualified, notified, reasons, report, matches, evaluated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			qualified = EXCLUDED.qualified,
			notified = EXCLUDED.notified,
			reasons = EXCLUDED.reasons`,
		row.ID, row.CandidateID, row.JobTitle, row.WeightedScore, row.MatchPercentage, row.Experience,
		row.MeetsExperience, row.Qualified, row.Notified,
		string(row.Reasons), string(row.Report), string(row.Matches),
		e.EvaluatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert evaluation for %q: %w", row.JobTitle, err)
	}
	return nil
}

func (s *postgresStore) ListEvaluations(ctx context.Context, candidateID int64) ([]*recruiting.Evaluation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, candidate_id, job_title, weighted_score, match_percentage, experience,
			meets_experience, qualified, notified, reasons::text, report::text, matches::text, evaluated_at
		FROM evaluation_logs
		WHERE candidate_id = $1
		ORDER BY evaluated_at DESC, job_title`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (*recruiting.Evaluation, error) {
		var (
			row                      evaluationRow
			reasons, report, matches string
			evaluatedAt              time.Time
		)
		if err := r.Scan(
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
		e.EvaluatedAt = evaluatedAt.UTC()
		return e, nil
	})
}

func (s *postgresStore) InvitedJobs(ctx context.Context, candidateID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT job_title FROM evaluation_logs
		WHERE candidate_id = $1 AND notified
		ORDER BY job_title`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list invited jobs: %w", err)
	}

	titles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan invited jobs: %w", err)
	}
	return titles, nil
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
