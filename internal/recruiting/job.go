package recruiting

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Job is an open position candidates are screened against.
type Job struct {
	Title           string   `mapstructure:"title" json:"title" validate:"required"`
	RequiredSkills  []string `mapstructure:"required-skills" json:"required_skills" validate:"dive,required"`
	PreferredSkills []string `mapstructure:"preferred-skills" json:"preferred_skills,omitempty"`
	MinExperience   float64  `mapstructure:"min-experience" json:"min_experience" validate:"gte=0"`
	TestLink        string   `mapstructure:"test-link" json:"test_link,omitempty" validate:"omitempty,url"`
	Department      string   `mapstructure:"department" json:"department,omitempty"`
}

type Jobs []*Job

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every job and rejects duplicate titles.
func (j Jobs) Validate() error {
	seen := make(map[string]struct{}, len(j))
	for i, job := range j {
		if job == nil {
			return fmt.Errorf("jobs[%d]: empty job", i)
		}
		if err := validate.Struct(job); err != nil {
			return fmt.Errorf("jobs[%d] %q: %w", i, job.Title, err)
		}
		key := strings.ToLower(strings.TrimSpace(job.Title))
		if _, ok := seen[key]; ok {
			return fmt.Errorf("jobs[%d]: duplicate title %q", i, job.Title)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (j Jobs) Titles() []string {
	titles := make([]string, 0, len(j))
	for _, job := range j {
		titles = append(titles, job.Title)
	}
	return titles
}

// FindByTitle looks a job up by title, ignoring case and surrounding spaces.
func (j Jobs) FindByTitle(title string) *Job {
	title = strings.TrimSpace(title)
	for _, job := range j {
		if strings.EqualFold(job.Title, title) {
			return job
		}
	}
	return nil
}

// DefaultJobs are the positions used when the config file lists none.
func DefaultJobs() Jobs {
	return Jobs{
		{
			Title: "Full-Stack Developer",
			RequiredSkills: []string{
				"JavaScript", "React", "Node.js", "MongoDB", "Express.js",
				"HTML", "CSS", "REST API", "Git",
			},
			PreferredSkills: []string{"TypeScript", "Next.js", "Docker", "AWS"},
			MinExperience:   2.0,
			TestLink:        "https://your-testing-platform.com/fullstack-test/12345",
			Department:      "Engineering",
		},
		{
			Title: "Frontend Developer",
			RequiredSkills: []string{
				"JavaScript", "React", "HTML", "CSS", "Responsive Design",
				"Git", "Web APIs",
			},
			PreferredSkills: []string{"TypeScript", "Redux", "Webpack", "SASS"},
			MinExperience:   1.5,
			TestLink:        "https://your-testing-platform.com/frontend-test/12346",
			Department:      "Engineering",
		},
		{
			Title: "Backend Developer",
			RequiredSkills: []string{
				"Node.js", "Express.js", "MongoDB", "REST API", "Database Design",
				"Git", "Authentication",
			},
			PreferredSkills: []string{"Python", "Docker", "Redis", "Microservices"},
			MinExperience:   2.5,
			TestLink:        "https://your-testing-platform.com/backend-test/12347",
			Department:      "Engineering",
		},
		{
			Title: "AI/ML Developer",
			RequiredSkills: []string{
				"Python", "Machine Learning", "Data Science", "TensorFlow",
				"Pandas", "NumPy", "Statistics",
			},
			PreferredSkills: []string{"PyTorch", "Deep Learning", "NLP", "Computer Vision"},
			MinExperience:   1.0,
			TestLink:        "https://your-testing-platform.com/ai-test/12348",
			Department:      "AI Research",
		},
	}
}
