package recruiting

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skill-screener/internal/matching"
	"github.com/spigell/skill-screener/internal/skills"
)

func evaluationsFixture() *Evaluations {
	m := matching.NewMatcher(skills.Default())
	jobs := DefaultJobs()
	candidate := []string{"JavaScript", "React", "HTML", "CSS", "Git", "Node.js", "Python"}

	evals := &Evaluations{}
	for _, job := range jobs {
		evals.Items = append(evals.Items, NewEvaluation(1, job, m.Evaluate(candidate, job.RequiredSkills), 1.8, 60))
	}
	return evals
}

func TestNewEvaluation(t *testing.T) {
	t.Parallel()

	job := &Job{Title: "Go Developer", RequiredSkills: []string{"Go", "SQL"}, MinExperience: 2}
	m := matching.NewMatcher(skills.Default())

	eval := NewEvaluation(3, job, m.Evaluate([]string{"go", "PostgreSQL"}, job.RequiredSkills), 1, 60)
	assert.NotEqual(t, uuid.Nil, eval.ID)
	assert.Equal(t, int64(3), eval.CandidateID)
	assert.InDelta(t, 90.0, eval.Score, 1e-9)
	assert.False(t, eval.MeetsExperience)
	assert.False(t, eval.Qualified)
	assert.Equal(t, []string{matching.ReasonInsufficientExperience}, eval.Reasons)
	assert.Equal(t, []string{"Go", "SQL"}, eval.MatchedSkills())
}

func TestEvaluationReject(t *testing.T) {
	t.Parallel()

	eval := &Evaluation{Qualified: true}
	eval.Reject("already invited")
	eval.Reject("already invited")

	assert.False(t, eval.Qualified)
	assert.Equal(t, []string{"already invited"}, eval.Reasons)
}

func TestEvaluationsQualifiedAndFind(t *testing.T) {
	t.Parallel()

	evals := evaluationsFixture()
	require.Equal(t, 4, evals.Len())

	qualified := evals.Qualified()
	require.Equal(t, 1, qualified.Len())
	assert.Equal(t, "Frontend Developer", qualified.Items[0].Job.Title)

	assert.NotNil(t, evals.FindByTitle("  backend developer"))
	assert.Nil(t, evals.FindByTitle("QA Engineer"))

	var empty *Evaluations
	assert.Zero(t, empty.Len())
	assert.Zero(t, empty.Qualified().Len())
}

func TestEvaluationsExclude(t *testing.T) {
	t.Parallel()

	evals := evaluationsFixture()
	excluded := evals.Exclude([]string{"frontend developer", "Data Engineer", "AI/ML Developer"})

	assert.Equal(t, []string{"Frontend Developer", "AI/ML Developer"}, excluded)
	require.Equal(t, 2, evals.Len())
	assert.Equal(t, "Full-Stack Developer", evals.Items[0].Job.Title)
	assert.Equal(t, "Backend Developer", evals.Items[1].Job.Title)

	assert.Nil(t, evals.Exclude(nil))
}

func TestReportByJob(t *testing.T) {
	t.Parallel()

	report := evaluationsFixture().ReportByJob()
	require.Len(t, report, 4)

	frontend := report["Frontend Developer"]
	assert.Equal(t, "true", frontend["qualified"])
	assert.Equal(t, "5/7", frontend["matched"])
	assert.Equal(t, "71.43", frontend["weighted_score"])
	assert.Equal(t, "https://your-testing-platform.com/frontend-test/12346", frontend["test_link"])
	assert.NotContains(t, frontend, "reasons")

	ai := report["AI/ML Developer"]
	assert.Equal(t, "false", ai["qualified"])
	assert.Equal(t, matching.ReasonLowSkillMatch, ai["reasons"])

	fullstack := report["Full-Stack Developer"]
	assert.Equal(t, "74.44", fullstack["weighted_score"])
	assert.Equal(t, matching.ReasonInsufficientExperience, fullstack["reasons"])
}

func TestDumpToTmpFile(t *testing.T) {
	t.Parallel()

	evals := evaluationsFixture()
	path, err := evals.DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Evaluations
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, evals.Len(), decoded.Len())
	assert.Equal(t, evals.Items[0].ID, decoded.Items[0].ID)
}
