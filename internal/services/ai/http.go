package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default timeout for planning calls
	DefaultTimeout = 30 * time.Second
	// maxResponseBytes bounds how much of a planning response is read
	maxResponseBytes = 1 << 20
)

// HTTPPlanningClient calls an external planning microservice with
// POST {baseURL}/api/plan {"text": ...}.
type HTTPPlanningClient struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	debugMode  bool
}

// NewHTTPPlanningClient creates a client for cfg.ServiceURL.
func NewHTTPPlanningClient(cfg BackendConfig) (*HTTPPlanningClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.ServiceURL), "/")
	if base == "" {
		return nil, fmt.Errorf("planning service url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPPlanningClient{
		endpoint:   base + "/api/plan",
		httpClient: &http.Client{Timeout: timeout},
		limiter:    newLimiter(cfg.RatePerSecond),
		logger:     logger,
		debugMode:  cfg.Debug,
	}, nil
}

// Plan sends text to the planning service.
func (c *HTTPPlanningClient) Plan(ctx context.Context, text string) (*PlanResponse, error) {
	if err := waitLimiter(ctx, c.limiter); err != nil {
		return nil, fmt.Errorf("planning request throttled: %w", err)
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal planning request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build planning request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := ExtractRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		c.logger.Warn("planning_service_unreachable",
			zap.String("endpoint", c.endpoint),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to call planning service: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read planning response: %w", err)
	}

	if c.debugMode {
		c.logger.Debug("planning_service_response",
			zap.Int("status", resp.StatusCode),
			zap.Int("response_length", len(raw)),
			zap.String("response_preview", SanitizeResponse(string(raw), true)),
			zap.String("request_id", ExtractRequestID(ctx)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPAPIError(resp, raw)
	}

	var out PlanResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode planning response: %w", err)
	}
	if out.TaskCount == 0 {
		out.TaskCount = len(out.Tasks)
	}
	return &out, nil
}

func newHTTPAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Type:       "planning_service_error",
		Message:    http.StatusText(resp.StatusCode),
	}
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Code = payload.Code
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.Type = "rate_limit_error"
		apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return apiErr
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func waitLimiter(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}
