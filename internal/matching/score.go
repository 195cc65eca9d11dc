package matching

import "math"

// MatchReport summarizes the matches of one candidate against one job.
type MatchReport struct {
	TotalRequired   int     `json:"total_required_skills"`
	MatchedCount    int     `json:"matched_skills"`
	MatchPercentage float64 `json:"match_percentage"`
	WeightedScore   float64 `json:"weighted_score"`
	ExactCount      int     `json:"exact_matches"`
	PartialCount    int     `json:"partial_matches"`
	RelatedCount    int     `json:"related_matches"`
}

// Score returns the weighted score (0-100) of matches against totalRequired
// required skills together with the report. Weak matches count in proportion
// to their confidence. A job without required skills scores 0.
func Score(matches []SkillMatch, totalRequired int) (float64, MatchReport) {
	if totalRequired <= 0 {
		return 0, MatchReport{}
	}

	report := MatchReport{
		TotalRequired: totalRequired,
		MatchedCount:  len(matches),
	}

	var confidence float64
	for _, match := range matches {
		confidence += match.Confidence
		switch match.Level {
		case LevelExact:
			report.ExactCount++
		case LevelPartial:
			report.PartialCount++
		case LevelRelated:
			report.RelatedCount++
		}
	}

	weighted := confidence / float64(totalRequired) * 100
	report.MatchPercentage = round2(float64(len(matches)) / float64(totalRequired) * 100)
	report.WeightedScore = round2(weighted)

	return weighted, report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Result bundles the matches and score of a single evaluation.
type Result struct {
	Matches []SkillMatch `json:"matches"`
	Score   float64      `json:"score"`
	Report  MatchReport  `json:"report"`
}

// Evaluate finds the matches and scores them against len(requiredSkills).
func (m *Matcher) Evaluate(candidateSkills, requiredSkills []string) Result {
	matches := m.FindMatches(candidateSkills, requiredSkills)
	score, report := Score(matches, len(requiredSkills))

	return Result{
		Matches: matches,
		Score:   score,
		Report:  report,
	}
}
