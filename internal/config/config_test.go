package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("APP_ENV", "test")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("MIN_ORDER_VALUE", "250.50")
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("SSE_KEEPALIVE", "10s")
		t.Setenv("INTERNAL_SERVICE_KEY", "svc-key")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5432", cfg.DBPort)
		assert.Equal(t, "9090", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "secret", cfg.JWTSecret)
		assert.Equal(t, "250.5", cfg.MinOrderValue.String())
		assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
		assert.Equal(t, 10*time.Second, cfg.SSEKeepAlive)
		assert.Equal(t, "svc-key", cfg.InternalServiceKey)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("APP_PORT", "")
		t.Setenv("MIN_ORDER_VALUE", "")
		t.Setenv("UPLOAD_DIR", "")
		t.Setenv("SSE_KEEPALIVE", "")

		cfg := LoadConfig()

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "200", cfg.MinOrderValue.String())
		assert.Equal(t, "./uploads", cfg.UploadDir)
		assert.Equal(t, 25*time.Second, cfg.SSEKeepAlive)
	})

	t.Run("Invalid values fall back", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("MIN_ORDER_VALUE", "abc")
		t.Setenv("SSE_KEEPALIVE", "soon")

		cfg := LoadConfig()

		assert.Equal(t, "200", cfg.MinOrderValue.String())
		assert.Equal(t, 25*time.Second, cfg.SSEKeepAlive)
	})

	t.Run("Bare seconds keepalive", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("SSE_KEEPALIVE", "5")

		cfg := LoadConfig()

		assert.Equal(t, 5*time.Second, cfg.SSEKeepAlive)
	})
}
