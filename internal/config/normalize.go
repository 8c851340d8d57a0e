package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCapture(); err != nil {
		return err
	}
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Ledger, err = expandPath(strings.TrimSpace(c.Paths.Ledger)); err != nil {
		return fmt.Errorf("paths.ledger: %w", err)
	}
	if c.Paths.Store, err = expandPath(strings.TrimSpace(c.Paths.Store)); err != nil {
		return fmt.Errorf("paths.store: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCapture() error {
	c.Capture.Mode = strings.ToLower(strings.TrimSpace(c.Capture.Mode))
	if c.Capture.Mode == "" {
		c.Capture.Mode = defaultCaptureMode
	}
	var err error
	if c.Capture.PrimaryFile, err = expandPath(strings.TrimSpace(c.Capture.PrimaryFile)); err != nil {
		return fmt.Errorf("capture.primary_file: %w", err)
	}
	if c.Capture.IntroFile, err = expandPath(strings.TrimSpace(c.Capture.IntroFile)); err != nil {
		return fmt.Errorf("capture.intro_file: %w", err)
	}
	c.Capture.PrimaryCommand = trimArgs(c.Capture.PrimaryCommand)
	c.Capture.IntroCommand = trimArgs(c.Capture.IntroCommand)
	c.Capture.ClickCommand = trimArgs(c.Capture.ClickCommand)
	c.Capture.DetectCommand = trimArgs(c.Capture.DetectCommand)
	if c.Capture.IntervalSeconds == 0 {
		c.Capture.IntervalSeconds = defaultIntervalSeconds
	}
	if c.Capture.CommandTimeoutSeconds <= 0 {
		c.Capture.CommandTimeoutSeconds = defaultCommandTimeout
	}
	return nil
}

func (c *Config) normalizeOutput() {
	fields := make([]string, 0, len(c.Output.PrintFields))
	for _, f := range c.Output.PrintFields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	c.Output.PrintFields = fields
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

// trimArgs drops a command whose program name is blank.
func trimArgs(args []string) []string {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil
	}
	out := make([]string, len(args))
	out[0] = strings.TrimSpace(args[0])
	copy(out[1:], args[1:])
	return out
}
