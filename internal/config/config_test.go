package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "sql", cfg.SessionBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_DSN", "postgres://crm@localhost/crm")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("SESSION_TTL_MINUTES", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "postgres://crm@localhost/crm", cfg.DatabaseDSN)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "oracle")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("backend", func(t *testing.T) {
		t.Setenv("SESSION_BACKEND", "memcached")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("SESSION_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
}
