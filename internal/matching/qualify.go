package matching

// Reasons recorded on an assessment that did not qualify.
const (
	// ReasonLowSkillMatch means the weighted score is below the threshold.
	ReasonLowSkillMatch = "low skill match"
	// ReasonInsufficientExperience means the candidate has fewer years than the job asks for.
	ReasonInsufficientExperience = "insufficient experience"
	// ReasonNoRequiredSkills means the job lists no required skills and cannot be scored.
	ReasonNoRequiredSkills = "no required skills"
)

// Qualify reports whether score reaches threshold and experience reaches minExperience.
func Qualify(score, threshold, experience, minExperience float64) bool {
	return score >= threshold && experience >= minExperience
}

// Assessment is the qualification decision with the reasons it failed.
type Assessment struct {
	Qualified       bool     `json:"qualified"`
	MeetsScore      bool     `json:"meets_score"`
	MeetsExperience bool     `json:"meets_experience"`
	Reasons         []string `json:"reasons,omitempty"`
}

// Assess applies Qualify to a scored result. Jobs without required skills
// never qualify, whatever the threshold.
func Assess(result Result, threshold, experience, minExperience float64) Assessment {
	a := Assessment{
		MeetsScore:      result.Score >= threshold,
		MeetsExperience: experience >= minExperience,
	}

	if result.Report.TotalRequired == 0 {
		a.MeetsScore = false
		a.Reasons = append(a.Reasons, ReasonNoRequiredSkills)
	} else if !a.MeetsScore {
		a.Reasons = append(a.Reasons, ReasonLowSkillMatch)
	}

	if !a.MeetsExperience {
		a.Reasons = append(a.Reasons, ReasonInsufficientExperience)
	}

	a.Qualified = a.MeetsScore && a.MeetsExperience
	return a
}
