package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.SessionManagers)
	assert.NotEmpty(t, cfg.MonitoredServices)
	assert.Equal(t, "graphical.target", cfg.GraphicalTarget)
	assert.Equal(t, 60*time.Second, cfg.WatchInterval)
	assert.False(t, cfg.AdvisorEnabled)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad log mode", func(c *Config) { c.LogMode = "syslog" }},
		{"empty session managers", func(c *Config) { c.SessionManagers = nil }},
		{"zero watch interval", func(c *Config) { c.WatchInterval = 0 }},
		{"advisor without timeout", func(c *Config) { c.AdvisorEnabled = true; c.AdvisorTimeout = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitAndTrim("a, b ,c"))
	assert.Equal(t, []string{"sddm"}, splitAndTrim("sddm,"))
	assert.Empty(t, splitAndTrim(""))
	assert.Empty(t, splitAndTrim(" , "))
}
