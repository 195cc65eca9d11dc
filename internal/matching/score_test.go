package matching

import (
	"math"
	"reflect"
	"testing"

	"github.com/spigell/skill-screener/internal/skills"
)

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		matches       []SkillMatch
		totalRequired int
		wantScore     float64
		wantReport    MatchReport
	}{
		{
			name:          "no required skills",
			matches:       []SkillMatch{{Level: LevelExact, Confidence: 1}},
			totalRequired: 0,
			wantScore:     0,
			wantReport:    MatchReport{},
		},
		{
			name:          "no matches",
			totalRequired: 2,
			wantScore:     0,
			wantReport:    MatchReport{TotalRequired: 2},
		},
		{
			name: "weighted score discounts weak matches",
			matches: []SkillMatch{
				{Level: LevelExact, Confidence: 1.0},
				{Level: LevelPartial, Confidence: 0.8},
				{Level: LevelRelated, Confidence: 0.5},
			},
			totalRequired: 4,
			wantScore:     57.5,
			wantReport: MatchReport{
				TotalRequired:   4,
				MatchedCount:    3,
				MatchPercentage: 75,
				WeightedScore:   57.5,
				ExactCount:      1,
				PartialCount:    1,
				RelatedCount:    1,
			},
		},
		{
			name: "report rounds to two decimals",
			matches: []SkillMatch{
				{Level: LevelPartial, Confidence: 0.7},
			},
			totalRequired: 3,
			wantScore:     23.333333,
			wantReport: MatchReport{
				TotalRequired:   3,
				MatchedCount:    1,
				MatchPercentage: 33.33,
				WeightedScore:   23.33,
				PartialCount:    1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score, report := Score(tt.matches, tt.totalRequired)
			if math.Abs(score-tt.wantScore) > 1e-6 {
				t.Fatalf("expected score %v, got %v", tt.wantScore, score)
			}
			if report != tt.wantReport {
				t.Fatalf("unexpected report:\n got: %+v\nwant: %+v", report, tt.wantReport)
			}
		})
	}
}

func TestEvaluateScenarios(t *testing.T) {
	t.Parallel()

	m := NewMatcher(skills.Default())

	t.Run("exact plus alias", func(t *testing.T) {
		t.Parallel()
		result := m.Evaluate([]string{"Python", "React"}, []string{"python", "javascript"})
		if math.Abs(result.Score-85.0) > 1e-9 {
			t.Fatalf("expected score 85, got %v", result.Score)
		}
		want := MatchReport{
			TotalRequired:   2,
			MatchedCount:    2,
			MatchPercentage: 100,
			WeightedScore:   85,
			ExactCount:      1,
			PartialCount:    1,
		}
		if result.Report != want {
			t.Fatalf("unexpected report:\n got: %+v\nwant: %+v", result.Report, want)
		}
	})

	t.Run("empty candidate", func(t *testing.T) {
		t.Parallel()
		result := m.Evaluate(nil, []string{"sql", "java"})
		if result.Report.MatchedCount != 0 || result.Score != 0 || len(result.Matches) != 0 {
			t.Fatalf("expected an empty result, got %+v", result)
		}
	})

	t.Run("no required skills", func(t *testing.T) {
		t.Parallel()
		result := m.Evaluate([]string{"Go", "Python"}, nil)
		if result.Score != 0 {
			t.Fatalf("expected zero score, got %v", result.Score)
		}
		if result.Report != (MatchReport{}) {
			t.Fatalf("expected empty report, got %+v", result.Report)
		}
	})
}

func TestScoreBounds(t *testing.T) {
	t.Parallel()

	m := NewMatcher(skills.Default())
	candidates := [][]string{
		nil,
		{"Go"},
		{"Python", "Django", "Pandas", "React", "AWS", "SQL"},
		{"javascript", "javascript", "JavaScript"},
	}
	required := [][]string{
		{"Go"},
		{"Python", "JavaScript", "Cloud", "Database"},
		{"javascript", "javascript"},
		{"!!!", "Go"},
	}

	for _, c := range candidates {
		for _, r := range required {
			result := m.Evaluate(c, r)
			if result.Score < 0 || result.Score > 100 {
				t.Fatalf("score %v out of range for candidate %v and required %v", result.Score, c, r)
			}
		}
	}
}

func TestNewExactMatchNeverDecreasesScore(t *testing.T) {
	t.Parallel()

	m := NewMatcher(skills.Default())
	required := []string{"Go", "SQL", "Docker", "Kafka"}
	candidates := []string{"PostgreSQL"}

	before := m.Evaluate(candidates, required)
	for _, extra := range []string{"Go", "Docker", "Kafka", "SQL"} {
		candidates = append(candidates, extra)
		after := m.Evaluate(candidates, required)
		if after.Score < before.Score {
			t.Fatalf("score dropped from %v to %v after adding %q", before.Score, after.Score, extra)
		}
		before = after
	}
	if math.Abs(before.Score-100.0) > 1e-9 {
		t.Fatalf("expected full score, got %v", before.Score)
	}
}

func TestAssess(t *testing.T) {
	t.Parallel()

	scored := Result{Score: 65, Report: MatchReport{TotalRequired: 4}}

	tests := []struct {
		name          string
		result        Result
		threshold     float64
		experience    float64
		minExperience float64
		want          Assessment
	}{
		{
			name:          "score passes experience fails",
			result:        scored,
			threshold:     60,
			experience:    1,
			minExperience: 2,
			want: Assessment{
				MeetsScore: true,
				Reasons:    []string{ReasonInsufficientExperience},
			},
		},
		{
			name:          "both pass",
			result:        scored,
			threshold:     60,
			experience:    2,
			minExperience: 2,
			want:          Assessment{Qualified: true, MeetsScore: true, MeetsExperience: true},
		},
		{
			name:          "both fail",
			result:        scored,
			threshold:     70,
			experience:    0,
			minExperience: 0.5,
			want:          Assessment{Reasons: []string{ReasonLowSkillMatch, ReasonInsufficientExperience}},
		},
		{
			name:          "no required skills never qualifies",
			result:        Result{},
			threshold:     0,
			experience:    5,
			minExperience: 0,
			want: Assessment{
				MeetsExperience: true,
				Reasons:         []string{ReasonNoRequiredSkills},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Assess(tt.result, tt.threshold, tt.experience, tt.minExperience)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("unexpected assessment:\n got: %+v\nwant: %+v", got, tt.want)
			}
		})
	}
}

func TestQualify(t *testing.T) {
	t.Parallel()

	if Qualify(65, 60, 1, 2) {
		t.Fatalf("expected experience shortfall to disqualify")
	}
	if !Qualify(60, 60, 2, 2) {
		t.Fatalf("expected boundary score and experience to qualify")
	}
	if Qualify(59.99, 60, 10, 0) {
		t.Fatalf("expected score below threshold to disqualify")
	}
}
