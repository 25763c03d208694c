// Package config loads application settings from an optional YAML file,
// environment variables and built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// StorageEnvVar overrides the data file location.
const StorageEnvVar = "PREDICTION_DB"

// Config represents the complete application configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	FilePath        string      `mapstructure:"file_path"`
	FilePermissions os.FileMode `mapstructure:"file_permissions"`
	DirPermissions  os.FileMode `mapstructure:"dir_permissions"`
}

// TelegramConfig holds Telegram reminder configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// An explicit path must exist; with an empty path a predict.yaml in the
// working directory or the user config directory is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("predict")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "predict"))
		}
	}

	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("PREDICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("storage.file_path", StorageEnvVar, "PREDICT_STORAGE_FILE_PATH"); err != nil {
		return nil, eris.Wrap(err, "config: bind storage env")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("storage.file_path", DefaultStoragePath())
	v.SetDefault("storage.file_permissions", 0o600)
	v.SetDefault("storage.dir_permissions", 0o700)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
}

// DefaultStoragePath places the data file next to the running executable,
// falling back to the OS temp directory.
func DefaultStoragePath() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join(os.TempDir(), "predict", "predictions.json")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "predictions.json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Storage config
	if c.Storage.FilePath == "" {
		return eris.New("storage.file_path is required")
	}
	if c.Storage.FilePermissions&0o600 != 0o600 {
		return eris.New("storage.file_permissions must allow owner read and write")
	}
	if c.Storage.DirPermissions&0o700 != 0o700 {
		return eris.New("storage.dir_permissions must allow owner access")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return eris.New("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return eris.New("telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Telegram.MaxRetries < 0 {
		return eris.New("telegram.max_retries must not be negative")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return eris.New("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return eris.New("logging.format must be one of: json, text")
	}

	return nil
}
