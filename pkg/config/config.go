package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	LogLevel         string        `yaml:"log_level" default:"warn"`
	ScanTimeout      time.Duration `yaml:"scan_timeout" default:"10s"`
	StopTimeout      time.Duration `yaml:"stop_timeout" default:"5s"`
	SequenceBuffer   int           `yaml:"sequence_buffer" default:"256"`
	SubscriberBuffer uint32        `yaml:"subscriber_buffer" default:"1024"`
	OutputFormat     string        `yaml:"output_format" default:"table"` // table, json
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML config file on top of the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ScanTimeout < 0 {
		return fmt.Errorf("scan_timeout must not be negative")
	}
	if c.StopTimeout < 0 {
		return fmt.Errorf("stop_timeout must not be negative")
	}
	if c.SequenceBuffer <= 0 {
		return fmt.Errorf("sequence_buffer must be positive")
	}
	if c.SubscriberBuffer == 0 {
		return fmt.Errorf("subscriber_buffer must be positive")
	}
	switch c.OutputFormat {
	case "table", "json":
	default:
		return fmt.Errorf("unsupported output_format %q", c.OutputFormat)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.Level())

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
