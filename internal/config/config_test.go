package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.ConflictWindow)
	assert.Equal(t, 500*time.Millisecond, cfg.HandoffPollInterval)
	assert.Equal(t, 10*time.Second, cfg.HandoffPollTimeout)
	assert.Equal(t, time.Hour, cfg.ReminderLeadTime)
	assert.Equal(t, time.Minute, cfg.ReminderPollInterval)
	assert.Equal(t, "Telecare", cfg.SendGridFromName)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BOOKING_CONFLICT_WINDOW", "45m")
	t.Setenv("HANDOFF_POLL_TIMEOUT", "30s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 45*time.Minute, cfg.ConflictWindow)
	assert.Equal(t, 30*time.Second, cfg.HandoffPollTimeout)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, "s3cret", cfg.AuthJWTSecret)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("BOOKING_CONFLICT_WINDOW", "not-a-duration")
	t.Setenv("REDIS_TLS", "maybe")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.ConflictWindow)
	assert.False(t, cfg.RedisTLS)
}
