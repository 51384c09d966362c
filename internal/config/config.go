// Package config provides configuration management for Sharp Timer.
// User-facing timer settings (durations, toggles) live in the stored
// document; this file carries the infrastructure knobs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the infrastructure configuration.
type Config struct {
	Storage     StorageConfig     `mapstructure:"storage"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Recovery    RecoveryConfig    `mapstructure:"recovery"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// PersistenceConfig holds autosave tunables.
type PersistenceConfig struct {
	AutosaveInterval  Duration `mapstructure:"autosave_interval"`
	SleepGapThreshold Duration `mapstructure:"sleep_gap_threshold"`
}

// RecoveryConfig holds startup-recovery tunables.
type RecoveryConfig struct {
	MaxStateAge Duration `mapstructure:"max_state_age"`
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir: "~/.sharp-timer",
		},
		Persistence: PersistenceConfig{
			AutosaveInterval:  Duration(30 * time.Second),
			SleepGapThreshold: Duration(60 * time.Second),
		},
		Recovery: RecoveryConfig{
			MaxStateAge: Duration(7 * 24 * time.Hour),
		},
	}
}

// Load loads the configuration from the config file, creating it with
// defaults on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")
	setDefaults()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Storage.DataDir == "~/.sharp-timer" || cfg.Storage.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.Storage.DataDir = filepath.Join(homeDir, ".sharp-timer")
	}

	return &cfg, nil
}

// Save saves the configuration to the config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")

	viper.Set("storage.data_dir", cfg.Storage.DataDir)
	viper.Set("persistence.autosave_interval", cfg.Persistence.AutosaveInterval.String())
	viper.Set("persistence.sleep_gap_threshold", cfg.Persistence.SleepGapThreshold.String())
	viper.Set("recovery.max_state_age", cfg.Recovery.MaxStateAge.String())

	return viper.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".sharp-timer", "config.toml"), nil
}

// GetHistoryPath returns the path to the history database file.
func GetHistoryPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "history.db")
}

// setDefaults sets default values for viper.
func setDefaults() {
	viper.SetDefault("storage.data_dir", "~/.sharp-timer")
	viper.SetDefault("persistence.autosave_interval", "30s")
	viper.SetDefault("persistence.sleep_gap_threshold", "1m0s")
	viper.SetDefault("recovery.max_state_age", "168h0m0s")
}
