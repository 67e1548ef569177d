// Package config loads the CLI configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all mailscrub CLI configuration.
type Config struct {
	Validation ValidationConfig `mapstructure:"validation"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ValidationConfig tunes the engine.
type ValidationConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Workers int           `mapstructure:"workers"`
	CacheMX bool          `mapstructure:"cache_mx"`
}

// SMTPConfig tunes the probe conversation.
type SMTPConfig struct {
	Port     string `mapstructure:"port"`
	HeloHost string `mapstructure:"helo_host"`
	MailFrom string `mapstructure:"mail_from"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	File      string `mapstructure:"file"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// Load reads config.yaml from the given directory, if present, and
// applies environment overrides with the MAILSCRUB_ prefix. For
// example, MAILSCRUB_VALIDATION_WORKERS overrides validation.workers.
// A missing config file is not an error: defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("MAILSCRUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("validation.timeout", 10*time.Second)
	v.SetDefault("validation.workers", 5)
	v.SetDefault("validation.cache_mx", false)
	v.SetDefault("smtp.port", "25")
	v.SetDefault("smtp.helo_host", "validator.local")
	v.SetDefault("smtp.mail_from", "test@validator.local")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_files", 3)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Validation.Workers < 1 {
		return fmt.Errorf("validation.workers must be at least 1, got %d", c.Validation.Workers)
	}
	if c.Validation.Timeout <= 0 {
		return fmt.Errorf("validation.timeout must be positive, got %s", c.Validation.Timeout)
	}
	if c.SMTP.MailFrom == "" {
		return errors.New("smtp.mail_from must not be empty")
	}
	return nil
}
