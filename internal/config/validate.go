package config

import (
	"fmt"

	"previsbine/internal/build"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBuild(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBuild() error {
	if _, err := build.ParseMode(c.Build.Mode); err != nil {
		return fmt.Errorf("build.mode: %w", err)
	}
	if _, err := build.ParseArchiver(c.Build.Archiver); err != nil {
		return fmt.Errorf("build.archiver: %w", err)
	}
	return nil
}

func (c *Config) validateTiming() error {
	values := map[string]int{
		"timing.settle_delay_seconds":      c.Timing.SettleDelay,
		"timing.extract_settle_seconds":    c.Timing.ExtractSettle,
		"timing.script_settle_seconds":     c.Timing.ScriptSettle,
		"timing.script_exit_delay_seconds": c.Timing.ScriptExitDelay,
		"timing.log_poll_interval_seconds": c.Timing.LogPollInterval,
		"timing.log_wait_timeout_seconds":  c.Timing.LogWaitTimeout,
	}
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be non-negative", key)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
