package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 7, cfg.Pulse.InviteTTLDays)
	assert.Equal(t, 5, cfg.Pulse.DefaultThreshold)
	assert.Equal(t, 60, cfg.Pulse.TickSeconds)
	assert.NotZero(t, cfg.Pulse.DispatchWorkers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PULSE_INVITE_TTL_DAYS", "3")
	t.Setenv("PULSE_DEFAULT_THRESHOLD", "10")
	t.Setenv("PUBLIC_BASE_URL", "https://pulse.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Pulse.InviteTTLDays)
	assert.Equal(t, 10, cfg.Pulse.DefaultThreshold)
	assert.Equal(t, "https://pulse.example.com", cfg.Server.PublicBaseURL, "trailing slash trimmed")
}

func TestDSNFromComponents(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: "5433", User: "u", Password: "p", DBName: "pulse", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5433/pulse?sslmode=disable", db.DSN())

	db.URL = "postgres://elsewhere/pulse"
	assert.Equal(t, "postgres://elsewhere/pulse", db.DSN())
}

func TestInvalidTTLFallsBack(t *testing.T) {
	t.Setenv("PULSE_INVITE_TTL_DAYS", "-1")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pulse.InviteTTLDays)
}
