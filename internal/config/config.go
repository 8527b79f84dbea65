package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port            string `env:"PORT" envDefault:"3000"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`
	CORSOrigins     string `env:"CORS_ORIGINS" envDefault:"*"`
	RateLimitMax    int    `env:"RATE_LIMIT_MAX" envDefault:"100"`   // 0 disables rate limiting
	RateLimitWindow int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"` // seconds

	// Database configuration
	DBType               string `env:"DB_TYPE" envDefault:"mysql"` // mysql, mariadb, postgres, sqlite, sqlite3, sqlserver
	DBHost               string `env:"DB_HOST" envDefault:"localhost"`
	DBPort               string `env:"DB_PORT" envDefault:"3306"`
	DBAppDatabase        string `env:"DB_APP_DATABASE"`
	DBAppUser            string `env:"DB_APP_USER"`
	DBAppPassword        string `env:"DB_APP_PASSWORD"`
	DBAppConnectionLimit int    `env:"DB_APP_CONNECTION_LIMIT" envDefault:"5"`
	DBUser               string `env:"DB_USER"`
	DBPassword           string `env:"DB_PASSWORD"`
	DBConnectionLimit    int    `env:"DB_CONNECTION_LIMIT" envDefault:"5"`
	DBLogLevel           string `env:"DB_LOG_LEVEL" envDefault:"warn"` // silent, error, warn, info

	// Auth configuration
	AuthProvider  string        `env:"AUTH_PROVIDER" envDefault:"authorizer"` // authorizer, local
	AuthzURL      string        `env:"AUTHZ_URL"`
	AuthzClientID string        `env:"AUTHZ_CLIENT_ID"`
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"cookie_session"`

	// Logging configuration
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // text, json
	LogFile   string `env:"LOG_FILE"`
}

// Load loads configuration from environment variables.
// If ENV_FILE names a dotenv file, it is loaded first without overriding the process environment.
func Load() (*Config, error) {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.DBType = strings.ToLower(cfg.DBType)
	cfg.AuthProvider = strings.ToLower(cfg.AuthProvider)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsSQLite reports whether the configured database is a local sqlite file.
func (c *Config) IsSQLite() bool {
	return c.DBType == "sqlite" || c.DBType == "sqlite3"
}

// Validate checks required fields for the selected database and auth provider.
func (c *Config) Validate() error {
	if c.DBAppDatabase == "" {
		return fmt.Errorf("DB_APP_DATABASE is required")
	}
	if !c.IsSQLite() {
		if c.DBAppUser == "" {
			return fmt.Errorf("DB_APP_USER is required")
		}
		if c.DBUser == "" {
			return fmt.Errorf("DB_USER is required")
		}
	}

	switch c.AuthProvider {
	case "authorizer":
		if c.AuthzURL == "" {
			return fmt.Errorf("AUTHZ_URL is required")
		}
		if c.AuthzClientID == "" {
			return fmt.Errorf("AUTHZ_CLIENT_ID is required")
		}
	case "local":
		if len(c.JWTSecret) < 16 {
			return fmt.Errorf("JWT_SECRET of at least 16 characters is required")
		}
		if c.JWTTTL <= 0 {
			return fmt.Errorf("JWT_TTL must be positive")
		}
	default:
		return fmt.Errorf("unsupported auth provider: %s", c.AuthProvider)
	}

	if c.RateLimitMax < 0 || c.RateLimitWindow < 0 {
		return fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must not be negative")
	}

	return nil
}
