package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Storage backend types.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageMySQL    = "mysql"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Storage   StorageConfig
	Companion CompanionConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"wardrobe-client"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// BackendConfig holds settings for the remote wardrobe API.
type BackendConfig struct {
	BaseURL      string        `envconfig:"BACKEND_BASE_URL" default:"https://wardrobe-backend-o0fr.onrender.com"`
	Timeout      time.Duration `envconfig:"BACKEND_TIMEOUT" default:"15s"`
	Retries      int           `envconfig:"BACKEND_RETRIES" default:"1"`
	RetryBackoff time.Duration `envconfig:"BACKEND_RETRY_BACKOFF" default:"250ms"`
}

// StorageConfig selects and configures the device key-value storage.
type StorageConfig struct {
	Type      string `envconfig:"STORAGE_TYPE" default:"sqlite"` // memory, sqlite, mysql, postgres, redis
	Path      string `envconfig:"STORAGE_PATH" default:"./data/wardrobe.db"`
	KeyPrefix string `envconfig:"STORAGE_KEY_PREFIX" default:"wardrobe:device"`
	// MySQL / PostgreSQL settings
	Host     string `envconfig:"STORAGE_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"STORAGE_DB_PORT" default:"0"`
	Name     string `envconfig:"STORAGE_DB_NAME" default:"wardrobe"`
	User     string `envconfig:"STORAGE_DB_USER" default:"wardrobe"`
	Password string `envconfig:"STORAGE_DB_PASS" default:""`
	SSLMode  string `envconfig:"STORAGE_DB_SSLMODE" default:"disable"`
	// Redis settings
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// CompanionConfig holds settings for the local companion HTTP API.
type CompanionConfig struct {
	Host            string        `envconfig:"COMPANION_HOST" default:"127.0.0.1"`
	Port            int           `envconfig:"COMPANION_PORT" default:"7420"`
	ReadTimeout     time.Duration `envconfig:"COMPANION_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"COMPANION_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"COMPANION_SHUTDOWN_TIMEOUT" default:"10s"`
	APIKeys         []string      `envconfig:"COMPANION_API_KEYS"`
	AllowedOrigins  []string      `envconfig:"COMPANION_ALLOWED_ORIGINS" default:"*"`
}

// Address returns the companion address in host:port format.
func (c *CompanionConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (s *StorageConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}

// MySQLDSN returns the MySQL data source name.
func (s *StorageConfig) MySQLDSN() string {
	port := s.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		s.User, s.Password, s.Host, port, s.Name)
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StorageConfig) PostgresDSN() string {
	port := s.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(s.User), url.QueryEscape(s.Password), s.Host, port, s.Name, s.SSLMode)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid BACKEND_BASE_URL %q", c.Backend.BaseURL)
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")

	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.Backend.Retries < 0 || c.Backend.Retries > 3 {
		return fmt.Errorf("BACKEND_RETRIES must be between 0 and 3, got %d", c.Backend.Retries)
	}

	switch c.Storage.Type {
	case StorageMemory, StorageSQLite, StorageMySQL, StoragePostgres, StorageRedis:
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q", c.Storage.Type)
	}
	return nil
}

// Process reads configuration from environment variables without
// validating it, for callers that apply their own overrides first.
func Process() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Load reads and validates configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := Process()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
