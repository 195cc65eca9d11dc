package recruiting

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/skill-screener/internal/matching"
)

// Evaluation is the outcome of screening one candidate against one job.
type Evaluation struct {
	ID              uuid.UUID             `json:"id"`
	CandidateID     int64                 `json:"candidate_id,omitempty"`
	Job             *Job                  `json:"job"`
	Matches         []matching.SkillMatch `json:"matches"`
	Score           float64               `json:"weighted_score"`
	Report          matching.MatchReport  `json:"report"`
	Experience      float64               `json:"experience"`
	MeetsExperience bool                  `json:"meets_experience"`
	Qualified       bool                  `json:"qualified"`
	Reasons         []string              `json:"reasons,omitempty"`
	Notified        bool                  `json:"notified"`
	EvaluatedAt     time.Time             `json:"evaluated_at"`
}

// NewEvaluation builds an unfiltered evaluation from a matcher result.
// Qualified is set when the score and experience checks both pass.
func NewEvaluation(candidateID int64, job *Job, result matching.Result, experience, threshold float64) *Evaluation {
	assessment := matching.Assess(result, threshold, experience, job.MinExperience)
	return &Evaluation{
		ID:              uuid.New(),
		CandidateID:     candidateID,
		Job:             job,
		Matches:         result.Matches,
		Score:           result.Score,
		Report:          result.Report,
		Experience:      experience,
		MeetsExperience: assessment.MeetsExperience,
		Qualified:       assessment.Qualified,
		Reasons:         assessment.Reasons,
		EvaluatedAt:     time.Now().UTC(),
	}
}

// Reject marks the evaluation as not qualified, recording reason once.
func (e *Evaluation) Reject(reason string) {
	e.Qualified = false
	for _, r := range e.Reasons {
		if r == reason {
			return
		}
	}
	e.Reasons = append(e.Reasons, reason)
}

func (e *Evaluation) MatchedSkills() []string {
	skills := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		skills = append(skills, m.RequiredSkill)
	}
	return skills
}

type Evaluations struct {
	Items []*Evaluation
}

func (e *Evaluations) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Items)
}

// Qualified returns the evaluations still marked as qualified, in order.
func (e *Evaluations) Qualified() *Evaluations {
	out := &Evaluations{}
	if e == nil {
		return out
	}
	for _, item := range e.Items {
		if item.Qualified {
			out.Items = append(out.Items, item)
		}
	}
	return out
}

func (e *Evaluations) FindByTitle(title string) *Evaluation {
	if e == nil {
		return nil
	}
	for _, item := range e.Items {
		if item.Job != nil && strings.EqualFold(item.Job.Title, strings.TrimSpace(title)) {
			return item
		}
	}
	return nil
}

// Exclude removes evaluations whose job title is in titles and returns the
// removed titles. Order of the remaining items is preserved.
func (e *Evaluations) Exclude(titles []string) []string {
	if e == nil || len(titles) == 0 {
		return nil
	}

	drop := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		drop[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	var excluded []string
	kept := e.Items[:0]
	for _, item := range e.Items {
		if item.Job != nil {
			if _, ok := drop[strings.ToLower(item.Job.Title)]; ok {
				excluded = append(excluded, item.Job.Title)
				continue
			}
		}
		kept = append(kept, item)
	}
	e.Items = kept

	return excluded
}

// ReportByJob renders a flat, human-readable summary keyed by job title.
func (e *Evaluations) ReportByJob() map[string]map[string]string {
	report := make(map[string]map[string]string)
	if e == nil {
		return report
	}

	for _, item := range e.Items {
		if item.Job == nil {
			continue
		}
		entry := map[string]string{
			"weighted_score":   fmt.Sprintf("%.2f", item.Report.WeightedScore),
			"match_percentage": fmt.Sprintf("%.2f", item.Report.MatchPercentage),
			"matched":          fmt.Sprintf("%d/%d", item.Report.MatchedCount, item.Report.TotalRequired),
			"experience":       fmt.Sprintf("%.1f (min %.1f)", item.Experience, item.Job.MinExperience),
			"qualified":        fmt.Sprintf("%t", item.Qualified),
		}
		if len(item.Matches) > 0 {
			entry["matched_skills"] = strings.Join(item.MatchedSkills(), ", ")
		}
		if len(item.Reasons) > 0 {
			entry["reasons"] = strings.Join(item.Reasons, "; ")
		}
		if item.Job.TestLink != "" {
			entry["test_link"] = item.Job.TestLink
		}
		report[item.Job.Title] = entry
	}

	return report
}

func (e *Evaluations) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "evaluations_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return "", err
	}
	return file.Name(), nil
}
