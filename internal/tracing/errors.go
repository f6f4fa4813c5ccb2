package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType classifies errors for span filtering.
type ErrorType string

const (
	// ErrorTypeHTTP marks HTTP-layer errors.
	ErrorTypeHTTP ErrorType = "http"
	// ErrorTypeDB marks database errors.
	ErrorTypeDB ErrorType = "db"
	// ErrorTypeRedis marks Redis errors.
	ErrorTypeRedis ErrorType = "redis"
	// ErrorTypeRabbitMQ marks message queue errors.
	ErrorTypeRabbitMQ ErrorType = "rabbitmq"
	// ErrorTypeObjectStorage marks MinIO errors.
	ErrorTypeObjectStorage ErrorType = "object_storage"
	// ErrorTypeLLM marks remote agent failures.
	ErrorTypeLLM ErrorType = "llm"
	// ErrorTypeExtraction marks resume text extraction failures.
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeValidation marks input validation errors.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeInternal marks internal errors.
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeTimeout marks deadline errors.
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypePermission marks authorization errors.
	ErrorTypePermission ErrorType = "permission"
)

// RecordError records err on span with a uniform error type attribute.
func RecordError(span trace.Span, err error, errorType ErrorType) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", err.Error()),
	)
	span.SetStatus(codes.Error, err.Error())
}

// RecordErrorWithInfo records err with additional attributes.
func RecordErrorWithInfo(span trace.Span, err error, errorType ErrorType, attributes ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", err.Error()),
	)
	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}
	span.SetStatus(codes.Error, err.Error())
}

// RecordHTTPError records an HTTP error with its status code and category.
func RecordHTTPError(span trace.Span, err error, statusCode int) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(ErrorTypeHTTP)),
		attribute.String("error.message", err.Error()),
		attribute.Int("http.status_code", statusCode),
	)

	var errorCategory string
	switch {
	case statusCode >= 400 && statusCode < 500:
		errorCategory = "client_error"
	case statusCode >= 500:
		errorCategory = "server_error"
	default:
		errorCategory = "unknown"
	}
	span.SetAttributes(attribute.String("error.category", errorCategory))
	span.SetStatus(codes.Error, err.Error())
}
