package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage types
const (
	StorageNone     = "none"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Auth types
const (
	AuthNone   = "none"
	AuthAPIKey = "api-key"
)

// Config holds all configuration for the server
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
	Proxy     ProxyConfig
	Metrics   MetricsConfig
	Methods   MethodsConfig
	Audit     AuditConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	ReadTimeout    int // seconds
	WriteTimeout   int // seconds
	IdleTimeout    int // seconds
	RequestTimeout int // seconds
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type     string // "none", "sqlite" or "postgres"
	Postgres PostgresConfig
	SQLite   SQLiteConfig
}

// PostgresConfig holds Postgres connection settings
type PostgresConfig struct {
	URL string
}

// SQLiteConfig holds SQLite settings
type SQLiteConfig struct {
	Path string
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	Type string // "none" or "api-key"
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string // "text" or "json"
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerMin int
	BurstSize      int
	CleanupMinutes int
}

// SecurityConfig holds request size limits
type SecurityConfig struct {
	MaxBodySizeKB int
	MaxBatchSize  int
}

// ProxyConfig holds trusted proxy settings for X-Forwarded-For handling
type ProxyConfig struct {
	TrustProxy     bool
	TrustedProxies []string // CIDR notation
}

// MetricsConfig holds the Prometheus listener settings
type MetricsConfig struct {
	Enabled bool
	Port    int
}

// MethodsConfig holds method registry settings
type MethodsConfig struct {
	// DefinitionsPath is an optional TOML or YAML file with extra methods.
	DefinitionsPath string
}

// AuditConfig controls the validation log
type AuditConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			Host:           getEnv("HOST", "0.0.0.0"),
			ReadTimeout:    getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:    getEnvInt("SERVER_IDLE_TIMEOUT", 120),
			RequestTimeout: getEnvInt("SERVER_REQUEST_TIMEOUT", 30),
		},
		Storage: StorageConfig{
			Type: getEnv("STORAGE_TYPE", StorageSQLite),
			Postgres: PostgresConfig{
				URL: getEnv("DATABASE_URL", ""),
			},
			SQLite: SQLiteConfig{
				Path: getEnv("SQLITE_PATH", "./data/kontocheck.db"),
			},
		},
		Auth: AuthConfig{
			Type: getEnv("AUTH_TYPE", AuthNone),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMin: getEnvInt("RATE_LIMIT_RPM", 600),
			BurstSize:      getEnvInt("RATE_LIMIT_BURST", 100),
			CleanupMinutes: getEnvInt("RATE_LIMIT_CLEANUP_MINUTES", 10),
		},
		Security: SecurityConfig{
			MaxBodySizeKB: getEnvInt("SECURITY_MAX_BODY_SIZE_KB", 1024),
			MaxBatchSize:  getEnvInt("SECURITY_MAX_BATCH_SIZE", 1000),
		},
		Proxy: ProxyConfig{
			TrustProxy:     getEnvBool("TRUST_PROXY", false),
			TrustedProxies: getEnvStringSlice("TRUSTED_PROXIES", []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
		},
		Methods: MethodsConfig{
			DefinitionsPath: getEnv("METHODS_DEFINITIONS_PATH", ""),
		},
		Audit: AuditConfig{
			Enabled: getEnvBool("AUDIT_ENABLED", false),
		},
	}

	// If DATABASE_URL is set, default to postgres
	if cfg.Storage.Postgres.URL != "" && os.Getenv("STORAGE_TYPE") == "" {
		cfg.Storage.Type = StoragePostgres
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are consistent.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Type {
	case StorageNone, StorageSQLite:
	case StoragePostgres:
		if c.Storage.Postgres.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage type: %s", c.Storage.Type))
	}

	switch c.Auth.Type {
	case AuthNone:
	case AuthAPIKey:
		if c.Storage.Type == StorageNone {
			errs = append(errs, errors.New("api-key auth requires storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth type: %s", c.Auth.Type))
	}

	if c.Audit.Enabled && c.Storage.Type == StorageNone {
		errs = append(errs, errors.New("the validation log requires storage"))
	}
	if c.Metrics.Enabled && c.Metrics.Port == c.Server.Port {
		errs = append(errs, errors.New("METRICS_PORT must differ from PORT"))
	}
	if c.Security.MaxBatchSize < 1 {
		errs = append(errs, errors.New("SECURITY_MAX_BATCH_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// StorageEnabled reports whether a database is configured.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Type != StorageNone
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
