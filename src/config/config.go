package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LogMode selects where log output goes
type LogMode string

const (
	LogModeCLI     LogMode = "cli"
	LogModeJournal LogMode = "journal"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds the application configuration
type Config struct {
	// Logging
	LogLevel LogLevel `mapstructure:"LOG_LEVEL"`
	LogMode  LogMode  `mapstructure:"LOG_MODE"`

	// Service roster
	AlwaysOnServices    []string `mapstructure:"ALWAYS_ON_SERVICES"`
	DesktopOnlyServices []string `mapstructure:"DESKTOP_ONLY_SERVICES"`
	SessionManagers     []string `mapstructure:"SESSION_MANAGERS"`
	DefaultSessionManager string `mapstructure:"DEFAULT_SESSION_MANAGER"`
	MonitoredServices   []string `mapstructure:"MONITORED_SERVICES"`
	GraphicalTarget     string   `mapstructure:"GRAPHICAL_TARGET"`

	// Health monitoring
	WatchInterval time.Duration `mapstructure:"WATCH_INTERVAL"`
	HistoryDBPath string        `mapstructure:"HISTORY_DB_PATH"`
	MetricsAddr   string        `mapstructure:"METRICS_ADDR"`

	// Advisory
	AdvisorEnabled bool          `mapstructure:"ADVISOR_ENABLED"`
	AdvisorURL     string        `mapstructure:"ADVISOR_URL"`
	AdvisorModel   string        `mapstructure:"ADVISOR_MODEL"`
	AdvisorTimeout time.Duration `mapstructure:"ADVISOR_TIMEOUT"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	// Set config file
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// Set defaults
	setDefaults(v)

	// Read from .env file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// .env file not found, continue with environment variables only
	}

	// Environment variables override .env file
	v.AutomaticEnv()

	// Parse configuration
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Parse comma-separated lists
	cfg.parseCommaSeparatedFields(v)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration used when no .env or
// environment overrides are present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		// Defaults are static and always unmarshal cleanly.
		panic(fmt.Sprintf("invalid built-in defaults: %v", err))
	}
	cfg.parseCommaSeparatedFields(v)
	return cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MODE", "cli")
	v.SetDefault("ALWAYS_ON_SERVICES", "smb,plexmediaserver,libvirtd")
	v.SetDefault("DESKTOP_ONLY_SERVICES", "")
	v.SetDefault("SESSION_MANAGERS", "sddm,gdm,lightdm,ly")
	v.SetDefault("DEFAULT_SESSION_MANAGER", "sddm")
	v.SetDefault("MONITORED_SERVICES", "NetworkManager,sshd,smb,plexmediaserver,libvirtd")
	v.SetDefault("GRAPHICAL_TARGET", "graphical.target")
	v.SetDefault("WATCH_INTERVAL", "60s")
	v.SetDefault("HISTORY_DB_PATH", "/var/lib/guardian/history.db")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("ADVISOR_ENABLED", false)
	v.SetDefault("ADVISOR_URL", "http://localhost:11434")
	v.SetDefault("ADVISOR_MODEL", "llama3")
	v.SetDefault("ADVISOR_TIMEOUT", "15s")
}

// parseCommaSeparatedFields parses comma-separated string fields into slices
func (c *Config) parseCommaSeparatedFields(v *viper.Viper) {
	c.AlwaysOnServices = splitAndTrim(v.GetString("ALWAYS_ON_SERVICES"))
	c.DesktopOnlyServices = splitAndTrim(v.GetString("DESKTOP_ONLY_SERVICES"))
	c.SessionManagers = splitAndTrim(v.GetString("SESSION_MANAGERS"))
	c.MonitoredServices = splitAndTrim(v.GetString("MONITORED_SERVICES"))
}

// splitAndTrim splits a comma-separated string and trims whitespace
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate log level
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// Valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	// Validate log mode
	switch c.LogMode {
	case LogModeCLI, LogModeJournal:
		// Valid
	default:
		return fmt.Errorf("invalid log mode: %s (must be cli or journal)", c.LogMode)
	}

	// The mode switcher cannot reason about a host with no session-manager
	// candidates at all; an empty always-on roster is fine.
	if len(c.SessionManagers) == 0 {
		return fmt.Errorf("SESSION_MANAGERS must list at least one candidate")
	}

	if c.WatchInterval <= 0 {
		return fmt.Errorf("invalid watch interval: %s (must be positive)", c.WatchInterval)
	}

	if c.AdvisorEnabled && c.AdvisorTimeout <= 0 {
		return fmt.Errorf("invalid advisor timeout: %s (must be positive)", c.AdvisorTimeout)
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{LogLevel=%s, SessionManagers=%s, AlwaysOn=%s, WatchInterval=%s, Advisor=%t}",
		c.LogLevel, strings.Join(c.SessionManagers, "|"), strings.Join(c.AlwaysOnServices, "|"),
		c.WatchInterval, c.AdvisorEnabled)
}
