package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"RETAIL_APP_NAME":          os.Getenv("RETAIL_APP_NAME"),
		"RETAIL_APP_ENV":           os.Getenv("RETAIL_APP_ENV"),
		"RETAIL_APP_PORT":          os.Getenv("RETAIL_APP_PORT"),
		"RETAIL_DATABASE_HOST":     os.Getenv("RETAIL_DATABASE_HOST"),
		"RETAIL_DATABASE_PASSWORD": os.Getenv("RETAIL_DATABASE_PASSWORD"),
		"RETAIL_DATABASE_SSLMODE":  os.Getenv("RETAIL_DATABASE_SSLMODE"),
		"RETAIL_LOG_LEVEL":         os.Getenv("RETAIL_LOG_LEVEL"),
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

		assert.Equal(t, "retailops-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "retailops", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, int64(10<<20), cfg.HTTP.MaxBodySize)
		assert.NotZero(t, cfg.Receive.IdempotencyTTL)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("RETAIL_APP_PORT", "9090")
		os.Setenv("RETAIL_DATABASE_HOST", "db.internal")
		os.Setenv("RETAIL_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("production requires database password and ssl", func(t *testing.T) {
		clearEnv()
		os.Setenv("RETAIL_APP_ENV", "production")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "retail",
		Password: "p@ss/word",
		DBName:   "retailops",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.NotContains(t, dsn, "p@ss/word", "password must be escaped")
}

func TestRedisConfigAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
