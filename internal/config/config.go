// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/baro-ai/legal-api/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Application identity
	App AppConfig

	// Server configuration
	Server ServerConfig

	// API key authentication
	Auth AuthConfig

	// Log sinks
	Logging LoggingConfig

	// Classification model
	Model ModelConfig

	// Per-client rate limiting
	RateLimit RateLimitConfig

	// Cross-origin settings
	CORS CORSConfig

	// OpenTelemetry tracing
	OTEL OTELConfig
}

// AppConfig identifies the service.
type AppConfig struct {
	// Name is reported by /health.
	Name string

	// Version is reported by /health.
	Version string

	// Debug enables development logging and gin debug mode.
	Debug bool
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP port to listen on.
	Port string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// AuthConfig holds the API key allow-list.
type AuthConfig struct {
	// APIKeys are the accepted X-API-Key values.
	APIKeys []string
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Name is the logger identity.
	Name string

	// File is the append-only log file path.
	File string

	// Level is debug, info, warning or error.
	Level string
}

// ModelConfig contains classification model settings.
type ModelConfig struct {
	// Enabled loads the model at startup. When false, prediction routes
	// answer 503.
	Enabled bool

	// Version is reported by the model.
	Version string

	// WarmUp simulates model load time.
	WarmUp time.Duration

	// Workers bounds concurrent classifications.
	Workers int

	// MaxPredictionLength caps accepted text length for /predict.
	MaxPredictionLength int

	// DefaultConfidenceThreshold applies when a /predict request omits one.
	DefaultConfidenceThreshold float64
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled bool

	// RPS is tokens per second.
	RPS float64

	// Burst is the bucket size.
	Burst int
}

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	// AllowedOrigins is empty to allow any origin.
	AllowedOrigins []string
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
	SampleRatio float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:    getEnvOrDefault("APP_NAME", "BARO AI"),
			Version: getEnvOrDefault("APP_VERSION", "v1"),
			Debug:   getBoolOrDefault("DEBUG", false),
		},
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8000"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			APIKeys: splitCSV(getEnvOrDefault("API_KEYS", "secret-key-123,dev-key-456")),
		},
		Logging: LoggingConfig{
			Name:  getEnvOrDefault("LOG_NAME", "baro_api"),
			File:  getEnvOrDefault("LOG_FILE", "logs/app.log"),
			Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		},
		Model: ModelConfig{
			Enabled:                    getBoolOrDefault("MODEL_ENABLED", true),
			Version:                    getEnvOrDefault("MODEL_VERSION", "v1.2.3"),
			WarmUp:                     getDurationOrDefault("MODEL_WARMUP", 0),
			Workers:                    getIntOrDefault("CLASSIFIER_WORKERS", 8),
			MaxPredictionLength:        getIntOrDefault("MAX_PREDICTION_LENGTH", 1000),
			DefaultConfidenceThreshold: getFloatOrDefault("DEFAULT_CONFIDENCE_THRESHOLD", 0.5),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RPS:     getFloatOrDefault("RATE_RPS", 10),
			Burst:   getIntOrDefault("RATE_BURST", 20),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		OTEL: OTELConfig{
			Enabled:     getBoolOrDefault("OTEL_ENABLED", false),
			Endpoint:    getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getEnvOrDefault("OTEL_SERVICE_NAME", "baro-legal-api"),
			SampleRatio: getFloatOrDefault("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if cfg.Logging.Level == "warn" {
		cfg.Logging.Level = "warning"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("%w: PORT must not be empty", domain.ErrInvalidConfig)
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server timeouts must be positive", domain.ErrInvalidConfig)
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("%w: API_KEYS must list at least one key", domain.ErrInvalidConfig)
	}

	switch c.Logging.Level {
	case "debug", "info", "warning", "error":
	default:
		return fmt.Errorf("%w: LOG_LEVEL must be one of debug, info, warning, error", domain.ErrInvalidConfig)
	}

	if strings.TrimSpace(c.Logging.File) == "" {
		return fmt.Errorf("%w: LOG_FILE must not be empty", domain.ErrInvalidConfig)
	}

	if c.Model.Workers < 1 {
		return fmt.Errorf("%w: CLASSIFIER_WORKERS must be at least 1", domain.ErrInvalidConfig)
	}

	if c.Model.MaxPredictionLength < 1 {
		return fmt.Errorf("%w: MAX_PREDICTION_LENGTH must be at least 1", domain.ErrInvalidConfig)
	}

	if c.Model.DefaultConfidenceThreshold < 0 || c.Model.DefaultConfidenceThreshold > 1 {
		return fmt.Errorf("%w: DEFAULT_CONFIDENCE_THRESHOLD must be between 0 and 1", domain.ErrInvalidConfig)
	}

	if c.Model.WarmUp < 0 {
		return fmt.Errorf("%w: MODEL_WARMUP must not be negative", domain.ErrInvalidConfig)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("%w: RATE_RPS must be > 0 and RATE_BURST >= 1", domain.ErrInvalidConfig)
	}

	if c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1 {
		return fmt.Errorf("%w: OTEL_TRACES_SAMPLER_ARG must be between 0 and 1", domain.ErrInvalidConfig)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Try parsing as seconds first (e.g., "15")
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		// Try parsing as duration string (e.g., "15s", "1m")
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
