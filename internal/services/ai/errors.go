package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
)

// APIError is a non-success answer from the planning service or the LLM API.
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	RetryAfter  *time.Duration
	IsPermanent bool // quota exhaustion, as opposed to a transient rate limit
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// IsRateLimitError checks if an error is a transient rate limit error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if apiErr := ExtractAPIError(err); apiErr != nil {
		return apiErr.StatusCode == http.StatusTooManyRequests && !apiErr.IsPermanent
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if apiErr := ExtractAPIError(err); apiErr != nil {
		return apiErr.IsPermanent
	}
	return strings.Contains(err.Error(), "insufficient_quota")
}

// ExtractAPIError finds API error details in err, converting OpenAI SDK
// errors on the way. It returns nil for transport and decoding errors.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var oaErr *openai.Error
	if errors.As(err, &oaErr) {
		converted := &APIError{
			Message:     oaErr.Message,
			Type:        oaErr.Type,
			Code:        oaErr.Code,
			StatusCode:  oaErr.StatusCode,
			IsPermanent: oaErr.Code == "insufficient_quota",
		}
		if converted.StatusCode == http.StatusTooManyRequests {
			retryAfter := 60 * time.Second
			if converted.IsPermanent {
				retryAfter = time.Hour
			}
			converted.RetryAfter = &retryAfter
		}
		return converted
	}
	return nil
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(h string) *time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || secs < 0 {
		return nil
	}
	d := time.Duration(secs) * time.Second
	return &d
}

// GetRetryDelay returns the backoff before retry number attempt (0-based).
func GetRetryDelay(err error, attempt int) time.Duration {
	shift := attempt
	if shift < 0 {
		shift = 0
	}
	if shift > 10 {
		shift = 10
	}

	if IsQuotaError(err) {
		delay := time.Hour * time.Duration(1<<uint(shift))
		if delay > 24*time.Hour {
			delay = 24 * time.Hour
		}
		return delay
	}

	if IsRateLimitError(err) {
		delay := 60 * time.Second * time.Duration(1<<uint(shift))
		if delay > 15*time.Minute {
			delay = 15 * time.Minute
		}
		if apiErr := ExtractAPIError(err); apiErr != nil && apiErr.RetryAfter != nil && *apiErr.RetryAfter > delay {
			delay = *apiErr.RetryAfter
		}
		return delay
	}

	delay := 5 * time.Second * time.Duration(1<<uint(shift))
	if delay > 5*time.Minute {
		delay = 5 * time.Minute
	}
	return delay
}
