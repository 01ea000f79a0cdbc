package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel      OTelConfig
	OpenAI    OpenAIConfig
	ArangoDB  ArangoDBConfig
	Generator GeneratorConfig
	Jobs      JobsConfig
	Env       string
	Host      string
	Port      string
	LogLevel  slog.Level
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

type ArangoDBConfig struct {
	URL        string
	Username   string
	Password   string
	Database   string
	Collection string
}

type GeneratorConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	Timeout     time.Duration
}

type JobsConfig struct {
	MaxDurationDays int
	MaxConcurrent   int
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeSeed   ServiceType = "seed"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.seed for the seed tool
//
// Falls back to .env if the service-specific file doesn't exist, so a
// checked-in example file is enough to get a local server running.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("WAYFARER_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	env := getEnv("WAYFARER_ENV", "development")

	defaultLevel := slog.LevelInfo
	if env == "development" {
		defaultLevel = slog.LevelDebug
	}

	cfg := Config{
		Env:      env,
		Host:     getEnv("HOST", "0.0.0.0"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", ""), defaultLevel),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "wayfarer"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		OpenAI: OpenAIConfig{
			APIKey:    getEnv("OPENAI_API_KEY", ""),
			BaseURL:   getEnv("OPENAI_BASE_URL", ""),
			Model:     getEnv("OPENAI_MODEL", "gpt-4o"),
			MaxTokens: getEnvInt("OPENAI_MAX_TOKENS", 3000),
		},
		ArangoDB: ArangoDBConfig{
			URL:        getEnv("ARANGO_URL", "http://localhost:8529"),
			Username:   getEnv("ARANGO_USERNAME", "root"),
			Password:   getEnv("ARANGO_PASSWORD", ""),
			Database:   getEnv("ARANGO_DATABASE", "wayfarer"),
			Collection: getEnv("ARANGO_COLLECTION", "itineraries"),
		},
		Generator: GeneratorConfig{
			MaxAttempts: getEnvInt("GENERATOR_MAX_ATTEMPTS", 3),
			BaseBackoff: time.Duration(getEnvInt("GENERATOR_BASE_BACKOFF_MS", 1000)) * time.Millisecond,
			Timeout:     time.Duration(getEnvInt("GENERATOR_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Jobs: JobsConfig{
			MaxDurationDays: getEnvInt("JOB_MAX_DURATION_DAYS", 30),
			MaxConcurrent:   getEnvInt("JOB_MAX_CONCURRENT", 8),
		},
	}

	// The seed tool only talks to the store; everything else needs the
	// generation credential up front.
	if serviceType != ServiceTypeSeed && cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func parseLogLevel(value string, fallback slog.Level) slog.Level {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
