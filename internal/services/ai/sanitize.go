package ai

import (
	"context"

	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/request"
)

// WithRequestID attaches a request id for LLM call logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return request.WithRequestID(ctx, id)
}

// ExtractRequestID extracts a request ID from context if available
func ExtractRequestID(ctx context.Context) string {
	return request.RequestIDFromContext(ctx)
}

// MaxPreviewLength is the maximum length for preview strings in logs
const MaxPreviewLength = 200

// SanitizePrompt creates a safe preview of a prompt for logging
func SanitizePrompt(prompt string, fullLog bool) string {
	return sanitizeForLog(prompt, fullLog)
}

// SanitizeResponse creates a safe preview of a response for logging
func SanitizeResponse(response string, fullLog bool) string {
	return sanitizeForLog(response, fullLog)
}

func sanitizeForLog(s string, fullLog bool) string {
	if s == "" {
		return ""
	}
	maxLen := MaxPreviewLength
	if fullLog {
		maxLen = logger.MaxDebugContentLength
	}
	return logger.SanitizeString(s, maxLen)
}
