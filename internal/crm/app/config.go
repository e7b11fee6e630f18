package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Issuer         string // Issuer claim for access tokens (default: leadboard)
	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseURL    string // SQLite path or postgres:// URL (default: crm.db)
	PepperFile     string // File holding the password pepper, created if missing (default: ./pepper)
	SigningKeyFile string // Optional: Ed25519 PEM key file; ephemeral keys when empty

	RedisURL     string        // Optional: redis:// URL for the dashboard cache; in-memory when empty
	DashboardTTL time.Duration // Dashboard cache lifetime (default: 5m)
	AMQPURL      string        // Optional: amqp:// URL for lead events; disabled when empty
	AMQPExchange string        // Topic exchange for lead events (default: crm.events)

	OTLPEndpoint string // Optional: OTLP/gRPC collector endpoint; tracing disabled when empty
	OTLPInsecure bool   // Plaintext connection to the collector

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Refresh token cleanup interval (default: 1h)
}

// fileConfig is the YAML layout of CRM_CONFIG_FILE. Environment variables
// take precedence over it.
type fileConfig struct {
	Issuer   string `yaml:"issuer"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	PepperFile     string `yaml:"pepper_file"`
	SigningKeyFile string `yaml:"signing_key_file"`
	Redis          struct {
		URL          string `yaml:"url"`
		DashboardTTL string `yaml:"dashboard_ttl"`
	} `yaml:"redis"`
	AMQP struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`
	OTLP struct {
		Endpoint string `yaml:"endpoint"`
		Insecure bool   `yaml:"insecure"`
	} `yaml:"otlp"`
	Env                  string `yaml:"env"`
	LogLevel             string `yaml:"log_level"`
	LogFormat            string `yaml:"log_format"`
	Port                 int    `yaml:"port"`
	ShutdownGracePeriod  string `yaml:"shutdown_grace_period"`
	HousekeepingInterval string `yaml:"housekeeping_interval"`
}

// LoadConfig reads CRM_CONFIG_FILE when set and overlays the environment.
func LoadConfig() (Config, error) {
	var fc fileConfig
	if path := os.Getenv("CRM_CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := Config{
		Issuer:         getEnvOrDefault("CRM_ISSUER", or(fc.Issuer, "leadboard")),
		DatabaseDriver: getEnvOrDefault("CRM_DATABASE_DRIVER", or(fc.Database.Driver, "sqlite")),
		DatabaseURL:    getEnvOrDefault("CRM_DATABASE_URL", or(fc.Database.URL, "crm.db")),
		PepperFile:     getEnvOrDefault("CRM_PEPPER_FILE", or(fc.PepperFile, "pepper")),
		SigningKeyFile: getEnvOrDefault("CRM_SIGNING_KEY_FILE", fc.SigningKeyFile),

		RedisURL:     getEnvOrDefault("CRM_REDIS_URL", fc.Redis.URL),
		DashboardTTL: getEnvDurationOrDefault("CRM_DASHBOARD_TTL", parseDuration(fc.Redis.DashboardTTL, 5*time.Minute)),
		AMQPURL:      getEnvOrDefault("CRM_AMQP_URL", fc.AMQP.URL),
		AMQPExchange: getEnvOrDefault("CRM_AMQP_EXCHANGE", or(fc.AMQP.Exchange, "crm.events")),

		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", fc.OTLP.Endpoint),
		OTLPInsecure: getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", fc.OTLP.Insecure),

		Env:                  getEnvOrDefault("ENV", or(fc.Env, "dev")),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", or(fc.LogLevel, "info")),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", or(fc.LogFormat, "json")),
		Port:                 getEnvIntOrDefault("PORT", orInt(fc.Port, 8080)),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", parseDuration(fc.ShutdownGracePeriod, 10*time.Second)),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", parseDuration(fc.HousekeepingInterval, time.Hour)),
	}

	if cfg.DatabaseDriver != "sqlite" && cfg.DatabaseDriver != "postgres" {
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func parseDuration(v string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
