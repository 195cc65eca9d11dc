// Package matching reconciles a candidate's skills with a job's required
// skills and turns the result into a comparable score.
package matching

import (
	"strings"

	"github.com/spigell/skill-screener/internal/skills"
)

// Level is the tier of a skill match.
type Level string

// Match tiers, strongest first.
const (
	LevelExact   Level = "exact"
	LevelPartial Level = "partial"
	LevelRelated Level = "related"
)

const (
	exactConfidence     = 1.0
	substringConfidence = 0.8
	aliasConfidence     = 0.7
	// partialThreshold is the lowest confidence still reported as a partial match.
	partialThreshold = 0.7
)

// SkillMatch is the best candidate skill found for one required skill.
type SkillMatch struct {
	RequiredSkill  string  `json:"required_skill"`
	CandidateSkill string  `json:"candidate_skill"`
	Level          Level   `json:"match_level"`
	Confidence     float64 `json:"confidence"`
}

// Matcher finds skill matches using a normalizer and an alias table.
// It holds no mutable state and may be shared between goroutines.
type Matcher struct {
	table      *skills.AliasTable
	normalizer *skills.Normalizer
}

// NewMatcher returns a matcher over table. A nil table disables the alias rule.
func NewMatcher(table *skills.AliasTable) *Matcher {
	return &Matcher{
		table:      table,
		normalizer: skills.NewNormalizer(table),
	}
}

// FindMatches returns at most one match per required skill, in requirement
// order. Required skills nothing matches are left out.
func (m *Matcher) FindMatches(candidateSkills, requiredSkills []string) []SkillMatch {
	candidates := make([]string, len(candidateSkills))
	for i, skill := range candidateSkills {
		candidates[i] = m.normalizer.Normalize(skill)
	}

	matches := make([]SkillMatch, 0, len(requiredSkills))
	for _, required := range requiredSkills {
		match, ok := m.bestMatch(required, candidateSkills, candidates)
		if ok {
			matches = append(matches, match)
		}
	}

	return matches
}

func (m *Matcher) bestMatch(required string, raw, normalized []string) (SkillMatch, bool) {
	req := m.normalizer.Normalize(required)
	if req == "" {
		return SkillMatch{}, false
	}

	for i, cand := range normalized {
		if cand == req {
			return SkillMatch{
				RequiredSkill:  required,
				CandidateSkill: raw[i],
				Level:          LevelExact,
				Confidence:     exactConfidence,
			}, true
		}
	}

	found := false
	best := SkillMatch{RequiredSkill: required}
	for i, cand := range normalized {
		confidence := m.confidence(req, cand)
		if confidence <= best.Confidence {
			continue
		}
		found = true
		best.CandidateSkill = raw[i]
		best.Confidence = confidence
	}

	if !found {
		return SkillMatch{}, false
	}

	best.Level = levelFor(best.Confidence)
	return best, true
}

// confidence scores a non-exact pair of normalized skills as the maximum over
// every rule that fires.
func (m *Matcher) confidence(req, cand string) float64 {
	if cand == "" {
		return 0
	}

	var confidence float64
	if strings.Contains(cand, req) || strings.Contains(req, cand) {
		confidence = max(confidence, substringConfidence)
	}
	if m.table.Relates(req, cand) || m.table.Relates(cand, req) {
		confidence = max(confidence, aliasConfidence)
	}

	return confidence
}

func levelFor(confidence float64) Level {
	if confidence >= partialThreshold {
		return LevelPartial
	}
	return LevelRelated
}
