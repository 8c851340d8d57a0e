package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.Ledger == "" {
		return errors.New("paths.ledger must be set")
	}
	return nil
}

func (c *Config) validateCapture() error {
	switch c.Capture.Mode {
	case ModeAuto:
		if c.Capture.IntervalSeconds < MinIntervalSeconds {
			return fmt.Errorf("capture.interval_seconds must be at least %d", MinIntervalSeconds)
		}
	case ModeEvent:
		if len(c.Capture.DetectCommand) == 0 {
			return errors.New("capture.detect_command must be set when capture.mode is event")
		}
	case ModeWatch:
		if c.Capture.PrimaryFile == "" {
			return errors.New("capture.primary_file must be set when capture.mode is watch")
		}
	default:
		return fmt.Errorf("capture.mode must be one of %s, %s, %s (got %q)", ModeAuto, ModeEvent, ModeWatch, c.Capture.Mode)
	}
	if c.Capture.PrimaryFile == "" && len(c.Capture.PrimaryCommand) == 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/scribe/config.toml"
		}
		return fmt.Errorf("capture.primary_file or capture.primary_command is required. Edit %s (create with 'scribe config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
