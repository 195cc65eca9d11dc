package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skill-screener/internal/matching"
	"github.com/spigell/skill-screener/internal/recruiting"
)

// openTestStores returns a SQLite store and, when TEST_DATABASE_URL is set,
// a Postgres one.
func openTestStores(t *testing.T) map[string]Store {
	t.Helper()

	ctx := context.Background()
	stores := map[string]Store{}

	sqlite, err := Open(ctx, Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "screener.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	stores[DriverSQLite] = sqlite

	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		pg, err := Open(ctx, Config{Driver: DriverPostgres, DSN: dsn})
		require.NoError(t, err)
		t.Cleanup(func() { _ = pg.Close() })
		stores[DriverPostgres] = pg
	}

	return stores
}

func testCandidate(email string) *recruiting.Candidate {
	years := 3.5
	return &recruiting.Candidate{
		Name:            "Jane Doe",
		Email:           email,
		Role:            "Backend Engineer",
		Skills:          []string{"Go", " ", "PostgreSQL", "Docker"},
		TotalExperience: &years,
	}
}

func testEvaluation(candidateID int64, title string, notified bool, at time.Time) *recruiting.Evaluation {
	return &recruiting.Evaluation{
		ID:          uuid.New(),
		CandidateID: candidateID,
		Job:         &recruiting.Job{Title: title},
		Matches: []matching.SkillMatch{
			{RequiredSkill: "Go", CandidateSkill: "Go", Level: matching.LevelExact, Confidence: 1},
		},
		Score: 50,
		Report: matching.MatchReport{
			TotalRequired: 2, MatchedCount: 1, MatchPercentage: 50, WeightedScore: 50, ExactCount: 1,
		},
		Experience:      3.5,
		MeetsExperience: true,
		Qualified:       notified,
		Reasons:         []string{matching.ReasonLowSkillMatch},
		Notified:        notified,
		EvaluatedAt:     at,
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: DriverSQLite})
	require.Error(t, err)

	_, err = Open(context.Background(), Config{Driver: "mysql", DSN: "x"})
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestCandidateRoundTrip(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			email := uuid.NewString() + "@example.com"

			c := testCandidate(email)
			id, err := store.SaveCandidate(ctx, c)
			require.NoError(t, err)
			assert.NotZero(t, id)
			assert.Equal(t, id, c.ID)

			got, err := store.GetCandidate(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "Jane Doe", got.Name)
			assert.Equal(t, email, got.Email)
			assert.Equal(t, []string{"Go", "PostgreSQL", "Docker"}, got.Skills)
			years, ok := got.ExperienceYears()
			assert.True(t, ok)
			assert.Equal(t, 3.5, years)

			// Saving the same email again updates the row and replaces skills.
			again := testCandidate(email)
			again.Skills = []string{"Rust"}
			again.TotalExperience = nil
			againID, err := store.SaveCandidate(ctx, again)
			require.NoError(t, err)
			assert.Equal(t, id, againID)

			got, err = store.GetCandidate(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, []string{"Rust"}, got.Skills)
			_, ok = got.ExperienceYears()
			assert.False(t, ok)

			_, err = store.GetCandidate(ctx, id+1000)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCandidatesWithoutEmailAreNotMerged(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, err := store.SaveCandidate(ctx, testCandidate(""))
			require.NoError(t, err)
			second, err := store.SaveCandidate(ctx, testCandidate(""))
			require.NoError(t, err)
			assert.NotEqual(t, first, second)
		})
	}
}

func TestEvaluationLog(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, err := store.SaveCandidate(ctx, testCandidate(uuid.NewString()+"@example.com"))
			require.NoError(t, err)

			base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
			older := testEvaluation(id, "Backend Developer", true, base)
			newer := testEvaluation(id, "Frontend Developer", false, base.Add(time.Hour))
			require.NoError(t, store.SaveEvaluation(ctx, older))
			require.NoError(t, store.SaveEvaluation(ctx, newer))

			list, err := store.ListEvaluations(ctx, id)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, newer.ID, list[0].ID)
			assert.Equal(t, "Frontend Developer", list[0].Job.Title)
			assert.Equal(t, older.Report, list[1].Report)
			assert.Equal(t, older.Matches, list[1].Matches)
			assert.Equal(t, older.Reasons, list[1].Reasons)
			assert.True(t, list[1].EvaluatedAt.Equal(base))

			invited, err := store.InvitedJobs(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, []string{"Backend Developer"}, invited)

			// Re-saving an evaluation updates the notification flag.
			newer.Notified = true
			require.NoError(t, store.SaveEvaluation(ctx, newer))
			invited, err = store.InvitedJobs(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, []string{"Backend Developer", "Frontend Developer"}, invited)
		})
	}
}

func TestSaveEvaluationRequiresCandidate(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.SaveEvaluation(context.Background(), testEvaluation(0, "Backend Developer", false, time.Now()))
			require.Error(t, err)

			require.Error(t, store.SaveEvaluation(context.Background(), nil))
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("a.db"))
	assert.Equal(t, "a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("a.db?mode=rwc"))
	assert.Equal(t, "a.db?_pragma=journal_mode(wal)", sqliteDSN("a.db?_pragma=journal_mode(wal)"))
}
