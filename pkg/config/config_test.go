package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, 2.0, cfg.SnapMaxDistanceKm)
	assert.Equal(t, 10*time.Second, cfg.RouteTimeout)
	assert.Equal(t, 30*time.Minute, cfg.CrowdWindow)
	assert.Equal(t, 50.0, cfg.DeviationThresholdMeters)
	assert.Equal(t, 5, cfg.HazardLookaheadNodes)
	assert.Equal(t, 7.0, cfg.HazardRiskScore)
	assert.Equal(t, 60*time.Second, cfg.AlertCooldown)
	assert.Equal(t, 23, cfg.NightStartHour)
	assert.Equal(t, 4, cfg.NightEndHour)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":8080")
	t.Setenv("ROUTE_TIMEOUT_SEC", "30")
	t.Setenv("HAZARD_RISK_SCORE", "8.5")
	t.Setenv("NIGHT_START_HOUR", "22")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.RouteTimeout)
	assert.Equal(t, 8.5, cfg.HazardRiskScore)
	assert.Equal(t, 22, cfg.NightStartHour)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("ROUTE_TIMEOUT_SEC", "zero")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsOutOfRangeNightHours(t *testing.T) {
	t.Setenv("NIGHT_START_HOUR", "25")
	_, err := Load()
	assert.Error(t, err)
}
