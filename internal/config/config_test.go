package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_DSN", "")
	t.Setenv("PG_HOST", "")
	t.Setenv("ORACLE_MODE", "")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.HasDatabase())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "process", cfg.Oracle.Mode)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "session", cfg.Session.CookieName)
	assert.True(t, cfg.UsingDefaultSecret())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/safar")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ORACLE_MODE", "HTTP")
	t.Setenv("ORACLE_URL", "http://ml:8000")
	t.Setenv("ORACLE_TIMEOUT", "3")
	t.Setenv("SESSION_TTL", "48h")
	t.Setenv("PG_AUTO_MIGRATE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.HasDatabase())
	assert.Equal(t, "postgres://u:p@db:5432/safar", cfg.GetPostgreSQLDSN())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http", cfg.Oracle.Mode)
	assert.Equal(t, 3*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 48*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.PostgreSQL.AutoMigrate)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown oracle mode", env: map[string]string{"ORACLE_MODE": "grpc"}},
		{name: "http oracle without url", env: map[string]string{"ORACLE_MODE": "http", "ORACLE_URL": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetPostgreSQLDSN_FromFields(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "localhost", Port: 5432, User: "postgres", Password: "secret",
		Database: "safar", SSLMode: "disable",
	}}

	assert.True(t, cfg.HasDatabase())
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=safar sslmode=disable",
		cfg.GetPostgreSQLDSN())
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("X_DURATION", "not-a-duration")
	assert.Equal(t, time.Minute, getEnvAsDuration("X_DURATION", time.Minute))

	t.Setenv("X_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvAsDuration("X_DURATION", time.Minute))
}
