package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", s.Server.Port)
	assert.Equal(t, 24*time.Hour, s.JWT.TTL())
	assert.Equal(t, 50, s.Outbox.BatchSize)
	assert.Equal(t, 5, s.Outbox.Retry.Attempts)
	assert.Equal(t, 2*time.Second, s.Outbox.Interval)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_DATABASE", "jobs")
	t.Setenv("DB_USERNAME", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRE_HOURS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("OUTBOX_INTERVAL", "500ms")
	t.Setenv("OUTBOX_MAX_ATTEMPTS", "3")
	t.Setenv("OUTBOX_RETRY_DELAY", "1s")
	t.Setenv("OUTBOX_BACKOFF", "3")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", s.Server.Port)
	assert.Equal(t, "postgres", s.Database.Driver)
	assert.Equal(t, "5432", s.Database.Port)
	assert.Contains(t, s.Database.DSN(), "host=db port=5432 user=app password=pw dbname=jobs")
	assert.Equal(t, "s3cret", s.JWT.Secret)
	assert.Equal(t, 2*time.Hour, s.JWT.TTL())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.CORS.AllowedOrigins)
	assert.Equal(t, 500*time.Millisecond, s.Outbox.Interval)
	assert.Equal(t, 3, s.Outbox.Retry.Attempts)
	assert.Equal(t, time.Second, s.Outbox.Retry.Delay)
	assert.Equal(t, 3.0, s.Outbox.Retry.Backoff)
}

func TestMySQLDSN(t *testing.T) {
	d := Database{Driver: "mysql", Host: "h", Port: "3306", Name: "n", User: "u", Password: "p"}
	assert.Equal(t, "u:p@tcp(h:3306)/n?charset=utf8mb4&parseTime=True&loc=Local", d.DSN())
}
