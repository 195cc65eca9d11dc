package recruiting

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type Candidate struct {
	ID              int64    `json:"id,omitempty"`
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty"`
	Role            string   `json:"role,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Location        string   `json:"location,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Skills          []string `json:"skills"`
	TotalExperience *float64 `json:"total_experience"`
}

// ExperienceYears returns the candidate's total experience. The second value
// is false when experience is missing and 0 is returned in its place.
func (c *Candidate) ExperienceYears() (float64, bool) {
	if c == nil || c.TotalExperience == nil {
		return 0, false
	}
	return *c.TotalExperience, true
}

// Label is a short human-readable identifier for logs and prompts.
func (c *Candidate) Label() string {
	if c == nil {
		return ""
	}
	if c.Name != "" && c.Email != "" {
		return fmt.Sprintf("%s <%s>", c.Name, c.Email)
	}
	if c.Name != "" {
		return c.Name
	}
	if c.Email != "" {
		return c.Email
	}
	return fmt.Sprintf("candidate #%d", c.ID)
}

var leadingNumber = regexp.MustCompile(`^[+-]?\d+(?:[.,]\d+)?`)

// ParseExperience coerces an experience value from upstream extraction into
// years. Numbers, numeric strings and strings such as "5.5 years" are
// accepted. Anything else, including negative values, yields (0, false).
func ParseExperience(v any) (float64, bool) {
	var years float64

	switch val := v.(type) {
	case float64:
		years = val
	case float32:
		years = float64(val)
	case int:
		years = float64(val)
	case int64:
		years = float64(val)
	case *float64:
		if val == nil {
			return 0, false
		}
		years = *val
	case string:
		match := leadingNumber.FindString(strings.TrimSpace(val))
		if match == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		years = f
	default:
		return 0, false
	}

	if math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
		return 0, false
	}

	return years, true
}

type extraction struct {
	Name            string `mapstructure:"name"`
	Email           string `mapstructure:"email"`
	Role            string `mapstructure:"role"`
	Phone           string `mapstructure:"phone"`
	Location        string `mapstructure:"location"`
	Summary         string `mapstructure:"summary"`
	TotalExperience any    `mapstructure:"total_experience"`
	Skills          []any  `mapstructure:"skills"`
}

// DecodeExtraction turns the structured output of résumé extraction into a
// Candidate. Problems with individual fields are returned as warnings rather
// than errors: non-string skills are dropped and unusable experience is left
// unset.
func DecodeExtraction(raw map[string]any) (*Candidate, []string, error) {
	var data extraction
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &data,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create extraction decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, nil, fmt.Errorf("decode extraction: %w", err)
	}

	var warnings []string
	candidate := &Candidate{
		Name:     strings.TrimSpace(data.Name),
		Email:    strings.TrimSpace(data.Email),
		Role:     strings.TrimSpace(data.Role),
		Phone:    strings.TrimSpace(data.Phone),
		Location: strings.TrimSpace(data.Location),
		Summary:  strings.TrimSpace(data.Summary),
		Skills:   make([]string, 0, len(data.Skills)),
	}

	for i, item := range data.Skills {
		skill, ok := item.(string)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("skills[%d]: dropping non-string value %v", i, item))
			continue
		}
		if skill = strings.TrimSpace(skill); skill != "" {
			candidate.Skills = append(candidate.Skills, skill)
		}
	}

	if years, ok := ParseExperience(data.TotalExperience); ok {
		candidate.TotalExperience = &years
	} else {
		warnings = append(warnings, fmt.Sprintf("total_experience: unusable value %v, treating as missing", data.TotalExperience))
	}

	return candidate, warnings, nil
}
