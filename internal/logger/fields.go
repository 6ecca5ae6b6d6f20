package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldEndpoint is the structured log field key for the analysis endpoint URL.
	FieldEndpoint = "endpoint"
	// FieldRequestID is the structured log field key for the per-attempt request id.
	FieldRequestID = "request_id"
	// FieldProvider is the structured log field key for the analyzer provider name.
	FieldProvider = "analyzer_provider"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "analyzer_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
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

// WithFields attaches fields to logger, falling back to a no-op logger when
// logger is nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AnalyzerFields describes which analyzer backend handled a request.
// Empty values are skipped.
func AnalyzerFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithAnalyzer attaches the analyzer fields to logger.
func WithAnalyzer(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AnalyzerFields(provider, model)...)
}
