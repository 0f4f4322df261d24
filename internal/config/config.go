package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the events API root used when nothing else is configured.
const DefaultAPIURL = "http://localhost:8000/api"

type Config struct {
	API         APIConfig     `yaml:"api"`
	Logging     LoggingConfig `yaml:"logging"`
	Tracing     TracingConfig `yaml:"tracing"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Environment string        `yaml:"environment" validate:"required"`
}

type APIConfig struct {
	BaseURL   string        `yaml:"base_url" validate:"required,http_url"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent string        `yaml:"user_agent"`
	// RateLimit caps requests per second; zero means unlimited.
	RateLimit float64       `yaml:"rate_limit" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter" validate:"oneof=stdout otlp none"`
	ServiceName  string  `yaml:"service_name" validate:"required_if=Enabled true"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

type MetricsConfig struct {
	// File receives client metrics in Prometheus text format on exit. Empty disables export.
	File string `yaml:"file"`
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultAPIURL,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Tracing: TracingConfig{
			Exporter:     "none",
			ServiceName:  "calendar-client",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Environment: "development",
	}
}

// Load builds the configuration. Precedence, lowest first: defaults, the YAML
// file at path (optional), a .env file in the working directory (skipped in
// production), then process environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if getEnv("ENVIRONMENT", cfg.Environment) != "production" {
		if err := loadDotEnv(".env"); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// loadDotEnv loads variables from the given files without overriding ones
// already set. Missing files are not an error.
func loadDotEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	// VITE_API_URL is honoured so a frontend .env can be shared with the CLI.
	cfg.API.BaseURL = getEnv("CALENDAR_API_URL", getEnv("VITE_API_URL", cfg.API.BaseURL))
	cfg.API.Timeout = getEnvDuration("CALENDAR_HTTP_TIMEOUT", cfg.API.Timeout)
	cfg.API.UserAgent = getEnv("CALENDAR_USER_AGENT", cfg.API.UserAgent)
	cfg.API.RateLimit = getEnvFloat("CALENDAR_RATE_LIMIT", cfg.API.RateLimit)

	cfg.Logging.Level = strings.ToLower(getEnv("LOG_LEVEL", cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(getEnv("LOG_FORMAT", cfg.Logging.Format))

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("TRACING_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)

	cfg.Metrics.File = getEnv("CALENDAR_METRICS_FILE", cfg.Metrics.File)

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
}

var validate = validator.New()

// Validate checks cfg and reports every failing field in one error.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
