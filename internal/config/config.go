// Package config loads application configuration from file, environment
// and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	ChannelURL string        `mapstructure:"channel_url"`
	Cache      CacheConfig   `mapstructure:"cache"`
	Guide      GuideConfig   `mapstructure:"guide"`
	Logging    LoggingConfig `mapstructure:"logging"`
}

// CacheConfig holds resource cache configuration.
type CacheConfig struct {
	Dir       string `mapstructure:"dir"`
	UserAgent string `mapstructure:"user_agent"`
}

// GuideConfig holds grid and navigation configuration.
type GuideConfig struct {
	// QuantumMinutes is the window alignment interval; time travel moves
	// the window by one quantum.
	QuantumMinutes int `mapstructure:"quantum_minutes"`
	// RangeHours is the default window length.
	RangeHours int `mapstructure:"range_hours"`
	// DebounceMS is the time-travel cooldown.
	DebounceMS int `mapstructure:"debounce_ms"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Quantum returns the alignment interval as a duration.
func (g GuideConfig) Quantum() time.Duration {
	if g.QuantumMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(g.QuantumMinutes) * time.Minute
}

// Range returns the default window length as a duration.
func (g GuideConfig) Range() time.Duration {
	if g.RangeHours <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(g.RangeHours) * time.Hour
}

// Debounce returns the time-travel cooldown as a duration.
func (g GuideConfig) Debounce() time.Duration {
	if g.DebounceMS <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(g.DebounceMS) * time.Millisecond
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		ChannelURL: "http://xml.oztivo.net/xmltv/channels.xml.gz",
		Cache: CacheConfig{
			Dir:       defaultCachePath(),
			UserAgent: "zapper/1.0",
		},
		Guide: GuideConfig{
			QuantumMinutes: 30,
			RangeHours:     2,
			DebounceMS:     200,
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from file and environment.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("ZAPPER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// defaultConfigPath returns the default config directory for the current OS.
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "zapper")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "zapper")
	}
}

// defaultCachePath returns the default cache directory for the current OS.
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "zapper", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".cache", "zapper")
	}
}

// defaultLogPath returns the default log file path for the current OS.
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "zapper", "zapper.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "zapper", "zapper.log")
	}
}
