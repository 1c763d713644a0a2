// Package config loads the daemon configuration. Everything is read once
// at startup and treated as immutable for the process lifetime; changing
// tuning requires a restart.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/jerryhoward/bytebeast/go-engine/internal/engine"
)

// #region config

// Config holds the full daemon configuration: the engine tuning plus the
// I/O surfaces around it.
type Config struct {
	Engine engine.Config `mapstructure:"engine"`
	Daemon DaemonConfig  `mapstructure:"daemon"`
	Log    LogConfig     `mapstructure:"log"`
}

// DaemonConfig configures the tick loop and the serving surfaces.
type DaemonConfig struct {
	DBPath string `mapstructure:"db_path"`
	// ListenAddr serves the snapshot websocket and the metrics endpoint.
	ListenAddr string `mapstructure:"listen_addr"`
	// TickInterval is the expected sample cadence; GapTimeout is how long
	// the loop waits before synthesizing a gap tick.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	GapTimeout   time.Duration `mapstructure:"gap_timeout"`
	// TaskCron schedules daily task generation.
	TaskCron string `mapstructure:"task_cron"`
	// RetentionDays bounds the sample/event logs; 0 keeps everything.
	RetentionDays int `mapstructure:"retention_days"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Default returns the stock configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Engine: engine.DefaultConfig(),
		Daemon: DaemonConfig{
			DBPath:        filepath.Join(home, ".bytebeast", "beast.db"),
			ListenAddr:    ":8750",
			TickInterval:  10 * time.Second,
			GapTimeout:    30 * time.Second,
			TaskCron:      "5 0 * * *",
			RetentionDays: 14,
		},
		Log: LogConfig{Level: "info", Pretty: false},
	}
}

// #endregion config

// #region load

// Load reads configuration from the given file (or the default search
// paths when path is empty), applies BYTEBEAST_* environment overrides and
// validates the result. Invalid configuration is fatal by contract: the
// caller should exit.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bytebeast")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bytebeast"))
		}
	}

	v.SetEnvPrefix("BYTEBEAST")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No file anywhere: defaults are a complete configuration.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate fails fast on operator errors.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Daemon.DBPath == "" {
		return fmt.Errorf("daemon.db_path is required")
	}
	if c.Daemon.TickInterval <= 0 {
		return fmt.Errorf("daemon.tick_interval must be positive, got %s", c.Daemon.TickInterval)
	}
	if c.Daemon.GapTimeout < c.Daemon.TickInterval {
		return fmt.Errorf("daemon.gap_timeout %s must be at least the tick interval %s",
			c.Daemon.GapTimeout, c.Daemon.TickInterval)
	}
	if c.Daemon.RetentionDays < 0 {
		return fmt.Errorf("daemon.retention_days must not be negative, got %d", c.Daemon.RetentionDays)
	}
	return nil
}

// #endregion load
