package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backend selectors.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds all configuration for the Promotrack application.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Events    EventsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Backend string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled     bool
	EventRPS    float64
	EventBurst  int
	ReportRPS   float64
	ReportBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// EventsConfig configures the attribution event dispatcher.
type EventsConfig struct {
	QueueSize int
	Workers   int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("PROMOTRACK_HTTP_ADDR", ":8080"),
			Env:             getEnv("PROMOTRACK_ENV", "development"),
			ShutdownTimeout: getDurationEnv("PROMOTRACK_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Backend: getEnv("PROMOTRACK_STORE_BACKEND", StoreMemory),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PROMOTRACK_DB_HOST", "localhost"),
			Port:     getIntEnv("PROMOTRACK_DB_PORT", 5432),
			User:     getEnv("PROMOTRACK_DB_USER", "promotrack"),
			Password: getEnv("PROMOTRACK_DB_PASSWORD", "promotrack_secret"),
			DBName:   getEnv("PROMOTRACK_DB_NAME", "promotrack"),
			SSLMode:  getEnv("PROMOTRACK_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("PROMOTRACK_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("PROMOTRACK_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("PROMOTRACK_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("PROMOTRACK_REDIS_PASSWORD", ""),
			DB:       getIntEnv("PROMOTRACK_REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("PROMOTRACK_AUTH_ENABLED", true),
			MasterKey: getEnv("PROMOTRACK_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("PROMOTRACK_AUTH_SKIP_PATHS", []string{"/health", "/metrics", "/events"}),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getBoolEnv("PROMOTRACK_RATE_LIMIT_ENABLED", true),
			EventRPS:    getFloatEnv("PROMOTRACK_RATE_LIMIT_EVENT_RPS", 1000),
			EventBurst:  getIntEnv("PROMOTRACK_RATE_LIMIT_EVENT_BURST", 200),
			ReportRPS:   getFloatEnv("PROMOTRACK_RATE_LIMIT_REPORT_RPS", 100),
			ReportBurst: getIntEnv("PROMOTRACK_RATE_LIMIT_REPORT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("PROMOTRACK_LOG_LEVEL", "info"),
			Format: getEnv("PROMOTRACK_LOG_FORMAT", ""),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("PROMOTRACK_METRICS_ENABLED", true),
			Path:    getEnv("PROMOTRACK_METRICS_PATH", "/metrics"),
		},
		Events: EventsConfig{
			QueueSize: getIntEnv("PROMOTRACK_EVENT_QUEUE_SIZE", 1024),
			Workers:   getIntEnv("PROMOTRACK_EVENT_WORKERS", 4),
		},
	}

	// Unless asked for explicitly, log format follows the environment:
	// human-readable console output in development, json elsewhere.
	if cfg.Log.Format == "" {
		if cfg.IsDevelopment() {
			cfg.Log.Format = "console"
		} else {
			cfg.Log.Format = "json"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("PROMOTRACK_API_KEY_MASTER is required when auth is enabled")
	}
	switch c.Store.Backend {
	case StoreMemory, StorePostgres, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Events.QueueSize <= 0 {
		return fmt.Errorf("PROMOTRACK_EVENT_QUEUE_SIZE must be positive")
	}
	if c.Events.Workers <= 0 {
		return fmt.Errorf("PROMOTRACK_EVENT_WORKERS must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
