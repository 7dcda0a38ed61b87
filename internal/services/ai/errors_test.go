package ai

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	t.Parallel()

	retry := 30 * time.Second
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "api 429", err: &APIError{StatusCode: http.StatusTooManyRequests}, want: true},
		{name: "wrapped api 429", err: fmt.Errorf("plan: %w", &APIError{StatusCode: 429, RetryAfter: &retry}), want: true},
		{name: "quota is not transient", err: &APIError{StatusCode: 429, IsPermanent: true}, want: false},
		{name: "server error", err: &APIError{StatusCode: 500}, want: false},
		{name: "message", err: errors.New("too many requests"), want: true},
		{name: "other", err: errors.New("connection refused"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("IsRateLimitError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetRetryDelay(t *testing.T) {
	t.Parallel()

	retry := 20 * time.Minute
	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{name: "generic first attempt", err: errors.New("boom"), attempt: 0, want: 5 * time.Second},
		{name: "generic third attempt", err: errors.New("boom"), attempt: 2, want: 20 * time.Second},
		{name: "generic capped", err: errors.New("boom"), attempt: 50, want: 5 * time.Minute},
		{name: "negative attempt", err: errors.New("boom"), attempt: -3, want: 5 * time.Second},
		{name: "rate limit", err: &APIError{StatusCode: 429}, attempt: 1, want: 2 * time.Minute},
		{name: "rate limit retry after wins", err: &APIError{StatusCode: 429, RetryAfter: &retry}, attempt: 0, want: 20 * time.Minute},
		{name: "quota", err: &APIError{StatusCode: 429, IsPermanent: true}, attempt: 0, want: time.Hour},
		{name: "quota capped", err: &APIError{StatusCode: 429, IsPermanent: true}, attempt: 9, want: 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetRetryDelay(tt.err, tt.attempt); got != tt.want {
				t.Errorf("GetRetryDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	if d := parseRetryAfter("15"); d == nil || *d != 15*time.Second {
		t.Errorf("Expected 15s, got %v", d)
	}
	if d := parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"); d != nil {
		t.Errorf("Expected nil for HTTP date, got %v", *d)
	}
	if d := parseRetryAfter(""); d != nil {
		t.Errorf("Expected nil for empty header, got %v", *d)
	}
}

func TestBackendRegistry(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()
	if _, err := r.Get("carrier-pigeon", BackendConfig{}); err == nil {
		t.Error("Expected error for unknown backend")
	} else {
		var nf *ErrBackendNotFound
		if !errors.As(err, &nf) || nf.Name != "carrier-pigeon" {
			t.Errorf("Expected ErrBackendNotFound, got %v", err)
		}
	}

	svc, err := r.Get(BackendHTTP, BackendConfig{ServiceURL: "http://localhost:5001"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := svc.(*HTTPPlanningClient); !ok {
		t.Errorf("Expected *HTTPPlanningClient, got %T", svc)
	}

	if _, err := r.Get(BackendOpenAI, BackendConfig{}); err == nil {
		t.Error("Expected openai backend to require an API key")
	}
}
