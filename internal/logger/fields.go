package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured log field keys.
const (
	FieldCandidate   = "candidate"
	FieldCandidateID = "candidate_id"
	FieldJob         = "job"
	FieldProvider    = "ai_provider"
	FieldModel       = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace
// and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, falling back to a no-op logger
// when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CandidateFields identifies a candidate in log entries. A zero id is omitted.
func CandidateFields(id int64, label string) []zap.Field {
	fields := StringFields(StringField{Key: FieldCandidate, Value: label})
	if id != 0 {
		fields = append(fields, zap.Int64(FieldCandidateID, id))
	}
	return fields
}

// WithCandidate attaches candidate fields to the logger.
func WithCandidate(logger *zap.Logger, id int64, label string) *zap.Logger {
	return WithFields(logger, CandidateFields(id, label)...)
}

// JobFields identifies a job in log entries.
func JobFields(title string) []zap.Field {
	return StringFields(StringField{Key: FieldJob, Value: title})
}

// ModelFields describes the extraction provider and model.
func ModelFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}
