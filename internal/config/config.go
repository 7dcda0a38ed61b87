package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AI backends understood by ai.NewDefaultRegistry.
const (
	AIBackendHTTP   = "http"
	AIBackendOpenAI = "openai"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	BaseURL          string
	FrontendURL      string
	Timezone         string
	AIBackend        string
	AIServiceURL     string
	AITimeout        time.Duration
	AIRateLimit      float64
	AICacheSize      int
	AICacheTTL       time.Duration
	OpenAIKey        string
	AIModel          string
	AIBaseURL        string
	EnableHSTS       bool
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int
	AnalyzeOnPlan    bool
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
}

var defaults = map[string]any{
	"SERVER_PORT":                 "8080",
	"BASE_URL":                    "http://localhost:8080",
	"FRONTEND_URL":                "http://localhost:3000",
	"TIMEZONE":                    "Local",
	"AI_BACKEND":                  AIBackendHTTP,
	"AI_SERVICE_URL":              "http://localhost:8000",
	"AI_TIMEOUT":                  "30s",
	"AI_RATE_LIMIT":               5.0,
	"AI_CACHE_SIZE":               256,
	"AI_CACHE_TTL":                "5m",
	"RABBITMQ_PREFETCH":           1,
	"ENABLE_HSTS":                 "false",
	"ANALYZE_ON_PLAN":             "false",
	"SERVER_DEBUG_MODE":           "false",
	"WORKER_DEBUG_MODE":           "false",
	"OTEL_ENABLED":                "false",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
}

// Load reads configuration from the environment. When CONFIG_FILE names a
// YAML file its values sit beneath the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		ServerPort:       v.GetString("SERVER_PORT"),
		BaseURL:          v.GetString("BASE_URL"),
		FrontendURL:      v.GetString("FRONTEND_URL"),
		Timezone:         v.GetString("TIMEZONE"),
		AIBackend:        strings.ToLower(v.GetString("AI_BACKEND")),
		AIServiceURL:     v.GetString("AI_SERVICE_URL"),
		AITimeout:        v.GetDuration("AI_TIMEOUT"),
		AIRateLimit:      v.GetFloat64("AI_RATE_LIMIT"),
		AICacheSize:      v.GetInt("AI_CACHE_SIZE"),
		AICacheTTL:       v.GetDuration("AI_CACHE_TTL"),
		OpenAIKey:        v.GetString("OPENAI_API_KEY"),
		AIModel:          v.GetString("AI_MODEL"),
		AIBaseURL:        v.GetString("AI_BASE_URL"),
		EnableHSTS:       getBool(v, "ENABLE_HSTS"),
		RedisURL:         v.GetString("REDIS_URL"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQPrefetch: v.GetInt("RABBITMQ_PREFETCH"),
		AnalyzeOnPlan:    getBool(v, "ANALYZE_ON_PLAN"),
		WorkerDebugMode:  getBool(v, "WORKER_DEBUG_MODE"),
		ServerDebugMode:  getBool(v, "SERVER_DEBUG_MODE"),
		OTELEnabled:      getBool(v, "OTEL_ENABLED"),
		OTELEndpoint:     v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.AIBackend {
	case AIBackendHTTP:
		if c.AIServiceURL == "" {
			errs = append(errs, errors.New("AI_SERVICE_URL is required when AI_BACKEND=http"))
		}
	case AIBackendOpenAI:
		if c.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when AI_BACKEND=openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("AI_BACKEND must be %q or %q, got %q", AIBackendHTTP, AIBackendOpenAI, c.AIBackend))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE %q is not a known location: %w", c.Timezone, err))
	}
	if c.AITimeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be a positive duration such as 30s"))
	}
	if c.AIRateLimit < 0 {
		errs = append(errs, errors.New("AI_RATE_LIMIT must not be negative"))
	}
	if c.RabbitMQPrefetch < 1 {
		c.RabbitMQPrefetch = 1
	}
	return errors.Join(errs...)
}

// QueueEnabled reports whether a RabbitMQ connection is configured.
func (c *Config) QueueEnabled() bool {
	return c.RabbitMQURL != ""
}

// RateLimitEnabled reports whether Redis-backed rate limiting is configured.
func (c *Config) RateLimitEnabled() bool {
	return c.RedisURL != ""
}

func getBool(v *viper.Viper, key string) bool {
	switch strings.ToLower(strings.TrimSpace(v.GetString(key))) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
