package ai

import (
	"context"

	"github.com/spigell/skill-screener/internal/recruiting"
)

// Extractor turns résumé text into a structured candidate profile.
type Extractor interface {
	Extract(ctx context.Context, resumeText string) (*recruiting.Candidate, error)
}
