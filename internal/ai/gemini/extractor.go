package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/skill-screener/internal/ai"
	"github.com/spigell/skill-screener/internal/recruiting"
	"github.com/spigell/skill-screener/internal/utils"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

//go:embed schema.json
var extractionSchema string

const (
	defaultMaxLogLength   = 200
	defaultMaxResumeChars = 8000
	defaultMaxRetries     = 2
	defaultRetryBackoff   = 2 * time.Second
	maxRetryBackoff       = 30 * time.Second
)

// Options tune the extractor. Zero values fall back to defaults; a negative
// MaxRetries disables retries.
type Options struct {
	MaxLogLength   int           `mapstructure:"max-log-length"`
	MaxResumeChars int           `mapstructure:"max-resume-chars"`
	MaxRetries     int           `mapstructure:"max-retries"`
	RetryBackoff   time.Duration `mapstructure:"retry-backoff"`
}

var _ ai.Extractor = (*Extractor)(nil)

// Extractor asks Gemini for a structured candidate profile.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	schema    *gojsonschema.Schema
	opts      Options
}

// ValidationError lists the fields of a model response that do not match the
// extraction schema.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "extraction does not match schema: " + strings.Join(e.Fields, "; ")
}

func NewExtractor(generator contentGenerator, logger *zap.Logger, opts Options) (*Extractor, error) {
	if generator == nil {
		return nil, errors.New("content generator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(extractionSchema))
	if err != nil {
		return nil, fmt.Errorf("load extraction schema: %w", err)
	}

	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}
	if opts.MaxResumeChars <= 0 {
		opts.MaxResumeChars = defaultMaxResumeChars
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}

	return &Extractor{
		generator: generator,
		logger:    logger,
		schema:    schema,
		opts:      opts,
	}, nil
}

// Extract sends the résumé text to the model and decodes its answer into a
// candidate. Failed generations and malformed answers are retried.
func (e *Extractor) Extract(ctx context.Context, resumeText string) (*recruiting.Candidate, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, errors.New("resume text is required")
	}

	text, truncated := utils.TruncateRunes(resumeText, e.opts.MaxResumeChars)
	if truncated {
		e.logger.Info("resume text truncated",
			zap.Int("original_length", utf8.RuneCountInString(resumeText)),
			zap.Int("max_resume_chars", e.opts.MaxResumeChars),
		)
	}

	prompt := buildPrompt(text)

	var lastErr error
	for attempt := 0; attempt <= e.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := utils.Backoff(e.opts.RetryBackoff, maxRetryBackoff, attempt)
			e.logger.Warn("retrying extraction",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := utils.WaitFor(ctx, delay); err != nil {
				return nil, err
			}
		}

		candidate, err := e.extractOnce(ctx, prompt)
		if err == nil {
			return candidate, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("extract candidate after %d attempts: %w", e.opts.MaxRetries+1, lastErr)
}

func (e *Extractor) extractOnce(ctx context.Context, prompt string) (*recruiting.Candidate, error) {
	e.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.opts.MaxLogLength)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.opts.MaxLogLength)),
	)

	payload, err := e.parseResponse(raw)
	if err != nil {
		return nil, err
	}

	candidate, warnings, err := recruiting.DecodeExtraction(payload)
	if err != nil {
		return nil, err
	}
	for _, warning := range warnings {
		e.logger.Warn("extraction field coerced", zap.String("detail", warning))
	}

	return candidate, nil
}

func (e *Extractor) parseResponse(raw string) (map[string]any, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, errors.New("gemini response contains no JSON object")
	}

	result, err := e.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if !result.Valid() {
		verr := &ValidationError{Fields: make([]string, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			verr.Fields = append(verr.Fields, field+": "+desc.Description())
		}
		return nil, verr
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	return data, nil
}

func buildPrompt(resumeText string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME_TEXT}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{RESUME_TEXT}}", resumeText)
}

// extractJSON strips markdown fences and any prose around the outermost
// JSON object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return ""
	}
	return strings.TrimSpace(raw[start : end+1])
}
