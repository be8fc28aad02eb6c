package main

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/blescan/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggingCommand(t *testing.T, args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().Bool("verbose", false, "")
	cmd.SetErr(new(bytes.Buffer))
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestConfigureLogger_LevelPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		cfgLevel string
		args     []string
		expected logrus.Level
	}{
		{"config level is used without flags", "debug", nil, logrus.DebugLevel},
		{"config default", "warn", nil, logrus.WarnLevel},
		{"log-level flag overrides config", "debug", []string{"--log-level", "error"}, logrus.ErrorLevel},
		{"verbose overrides config", "error", []string{"--verbose"}, logrus.DebugLevel},
		{"log-level wins over verbose", "warn", []string{"--verbose", "--log-level", "info"}, logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.LogLevel = tt.cfgLevel

			logger, err := configureLogger(newLoggingCommand(t, tt.args...), cfg, "verbose")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, logger.GetLevel())
		})
	}
}

func TestConfigureLogger_WritesToStderr(t *testing.T) {
	cmd := newLoggingCommand(t)
	stderr := new(bytes.Buffer)
	cmd.SetErr(stderr)

	logger, err := configureLogger(cmd, config.DefaultConfig(), "verbose")
	require.NoError(t, err)

	logger.Warn("adapter busy")
	assert.Contains(t, stderr.String(), "adapter busy", "logs MUST go to the command's stderr")
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter, "the formatter MUST come from the config")
}

func TestConfigureLogger_InvalidLevel(t *testing.T) {
	_, err := configureLogger(newLoggingCommand(t, "--log-level", "loud"), config.DefaultConfig(), "verbose")
	assert.ErrorContains(t, err, "invalid log level")
}
