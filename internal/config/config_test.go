package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 12, cfg.Bcrypt.Cost)
	assert.Equal(t, "100-M", cfg.RateLimit.RatePerIP)
	assert.Equal(t, 10, cfg.Lockout.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Lockout.Cooldown)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9999")
	t.Setenv("JWT_EXPIRY_SECONDS", "3600")
	t.Setenv("RATE_LIMIT_PER_IP", "5-S")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "5-S", cfg.RateLimit.RatePerIP)
}
