package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"CART_APP_NAME":               os.Getenv("CART_APP_NAME"),
		"CART_APP_ENV":                os.Getenv("CART_APP_ENV"),
		"CART_APP_PORT":               os.Getenv("CART_APP_PORT"),
		"CART_DATABASE_HOST":          os.Getenv("CART_DATABASE_HOST"),
		"CART_DATABASE_PORT":          os.Getenv("CART_DATABASE_PORT"),
		"CART_DATABASE_PASSWORD":      os.Getenv("CART_DATABASE_PASSWORD"),
		"CART_DATABASE_SSLMODE":       os.Getenv("CART_DATABASE_SSLMODE"),
		"CART_JWT_SECRET":             os.Getenv("CART_JWT_SECRET"),
		"CART_CART_MUTATION_DEBOUNCE": os.Getenv("CART_CART_MUTATION_DEBOUNCE"),
		"CART_GATEWAY_CART_API_BASE_URL": os.Getenv("CART_GATEWAY_CART_API_BASE_URL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "cantabria-cart", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "cart", cfg.Database.DBName)
		assert.Equal(t, 300*time.Millisecond, cfg.Cart.MutationDebounce)
		assert.Equal(t, 30*time.Second, cfg.Cart.SnapshotTTL)
		assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	})

	t.Run("loads values from environment variables with CART prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("CART_APP_NAME", "test-cart")
		os.Setenv("CART_APP_PORT", "9000")
		os.Setenv("CART_DATABASE_HOST", "testdb.local")
		os.Setenv("CART_DATABASE_PORT", "5433")
		os.Setenv("CART_CART_MUTATION_DEBOUNCE", "150ms")
		os.Setenv("CART_GATEWAY_CART_API_BASE_URL", "http://cartapi.internal")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-cart", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 150*time.Millisecond, cfg.Cart.MutationDebounce)
		assert.Equal(t, "http://cartapi.internal", cfg.Gateway.CartAPIBaseURL)
	})

	t.Run("rejects debounce above the hard cap", func(t *testing.T) {
		clearEnv()
		os.Setenv("CART_CART_MUTATION_DEBOUNCE", "500ms")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutation_debounce")
	})

	t.Run("production requires a strong jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("CART_APP_ENV", "production")
		os.Setenv("CART_DATABASE_PASSWORD", "secret")
		os.Setenv("CART_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "cart",
		Password: "p@ss/word",
		DBName:   "cartdb",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.local:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// special characters in the password are escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfigAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", cfg.Addr())
}
