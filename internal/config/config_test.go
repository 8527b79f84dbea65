package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/localnerve/sharmers-menus/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T, keys ...string) {
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func setLocalSQLiteEnv(t *testing.T) {
	clearEnv(t, "ENV_FILE", "PORT", "JWT_TTL", "SESSION_COOKIE", "RATE_LIMIT_MAX")
	t.Setenv("DB_TYPE", "SQLite")
	t.Setenv("DB_APP_DATABASE", ":memory:")
	t.Setenv("AUTH_PROVIDER", "Local")
	t.Setenv("JWT_SECRET", "0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setLocalSQLiteEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "local", cfg.AuthProvider)
	assert.True(t, cfg.IsSQLite())
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "cookie_session", cfg.SessionCookie)
	assert.Equal(t, 100, cfg.RateLimitMax)
}

func TestLoadEnvFile(t *testing.T) {
	setLocalSQLiteEnv(t)
	clearEnv(t, "JWT_SECRET")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-the-env-file-0001\nPORT=8088\n"), 0o600))
	t.Setenv("ENV_FILE", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-the-env-file-0001", cfg.JWTSecret)
	assert.Equal(t, "8088", cfg.Port)
}

func TestValidate(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			DBType:        "mysql",
			DBAppDatabase: "menus",
			DBAppUser:     "menus_app",
			DBUser:        "menus_owner",
			AuthProvider:  "authorizer",
			AuthzURL:      "http://localhost:8080",
			AuthzClientID: "client",
		}
	}

	assert.NoError(t, base().Validate())

	cases := map[string]func(c *config.Config){
		"missing database":  func(c *config.Config) { c.DBAppDatabase = "" },
		"missing app user":  func(c *config.Config) { c.DBAppUser = "" },
		"missing owner":     func(c *config.Config) { c.DBUser = "" },
		"missing authz url": func(c *config.Config) { c.AuthzURL = "" },
		"short jwt secret": func(c *config.Config) {
			c.AuthProvider = "local"
			c.JWTSecret = "short"
			c.JWTTTL = time.Hour
		},
		"unknown provider":    func(c *config.Config) { c.AuthProvider = "ldap" },
		"negative rate limit": func(c *config.Config) { c.RateLimitMax = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	sqlite := base()
	sqlite.DBType = "sqlite"
	sqlite.DBAppUser = ""
	sqlite.DBUser = ""
	assert.NoError(t, sqlite.Validate())
}
