package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://todo_user:pw@localhost:5432/todo_db?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.True(t, cfg.GeneratedSecret)
	assert.Len(t, cfg.JWT.Secret, 64)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "BOLT")
	t.Setenv("BOLTDB_PATH", "/tmp/todo.db")
	t.Setenv("JWT_SECRET", "configured")
	t.Setenv("TOKEN_TTL", "90")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageBolt, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/todo.db", cfg.Bolt.Path)
	assert.Equal(t, "configured", cfg.JWT.Secret)
	assert.False(t, cfg.GeneratedSecret)
	assert.Equal(t, 90*time.Second, cfg.JWT.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver": {
			"STORAGE_DRIVER": "sqlite",
		},
		"cache without redis": {
			"CACHE_ENABLED": "true",
			"REDIS_ENABLED": "false",
		},
		"production without secret": {
			"APP_ENV":    "production",
			"JWT_SECRET": "",
		},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
