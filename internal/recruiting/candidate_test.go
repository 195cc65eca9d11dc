package recruiting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExperience(t *testing.T) {
	t.Parallel()

	five := 5.0

	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{name: "float", input: 3.5, want: 3.5, wantOK: true},
		{name: "int", input: 4, want: 4, wantOK: true},
		{name: "pointer", input: &five, want: 5, wantOK: true},
		{name: "numeric string", input: "2", want: 2, wantOK: true},
		{name: "string with unit", input: " 5.5 years", want: 5.5, wantOK: true},
		{name: "comma decimal", input: "1,5", want: 1.5, wantOK: true},
		{name: "nil", input: nil},
		{name: "nil pointer", input: (*float64)(nil)},
		{name: "text", input: "several years"},
		{name: "negative", input: -1.0},
		{name: "nan", input: math.NaN()},
		{name: "bool", input: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseExperience(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExperienceYears(t *testing.T) {
	t.Parallel()

	years, ok := (&Candidate{}).ExperienceYears()
	assert.False(t, ok)
	assert.Zero(t, years)

	var nilCandidate *Candidate
	_, ok = nilCandidate.ExperienceYears()
	assert.False(t, ok)

	three := 3.0
	years, ok = (&Candidate{TotalExperience: &three}).ExperienceYears()
	assert.True(t, ok)
	assert.Equal(t, 3.0, years)
}

func TestDecodeExtraction(t *testing.T) {
	t.Parallel()

	candidate, warnings, err := DecodeExtraction(map[string]any{
		"name":             " Jane Doe ",
		"email":            "jane@example.com",
		"phone":            12345,
		"skills":           []any{"Go", 42, " ", "SQL"},
		"total_experience": "4 years",
		"education":        []any{"ignored"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", candidate.Name)
	assert.Equal(t, "12345", candidate.Phone)
	assert.Equal(t, []string{"Go", "SQL"}, candidate.Skills)
	years, ok := candidate.ExperienceYears()
	assert.True(t, ok)
	assert.Equal(t, 4.0, years)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "skills[1]")
}

func TestDecodeExtractionMissingExperience(t *testing.T) {
	t.Parallel()

	candidate, warnings, err := DecodeExtraction(map[string]any{
		"name":   "John",
		"skills": []any{"Python"},
	})
	require.NoError(t, err)

	_, ok := candidate.ExperienceYears()
	assert.False(t, ok)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "total_experience")
}

func TestDecodeExtractionRejectsWrongShape(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeExtraction(map[string]any{"name": map[string]any{"first": "Jane"}})
	require.Error(t, err)
}

func TestDecodeExtractionLiftsSingleSkill(t *testing.T) {
	t.Parallel()

	candidate, _, err := DecodeExtraction(map[string]any{"skills": "Go", "total_experience": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, candidate.Skills)
}

func TestCandidateLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Jane <jane@example.com>", (&Candidate{Name: "Jane", Email: "jane@example.com"}).Label())
	assert.Equal(t, "Jane", (&Candidate{Name: "Jane"}).Label())
	assert.Equal(t, "candidate #7", (&Candidate{ID: 7}).Label())
}
