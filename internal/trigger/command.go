package trigger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultCommandTimeout = 5 * time.Second

// CommandClicker presses the cast button by running a bridge command.
type CommandClicker struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// Click runs the command and reports a non-zero exit as an error.
func (c CommandClicker) Click(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("click command not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeoutOr(c.Timeout))
	defer cancel()
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("click command: %w: %s", err, msg)
		}
		return fmt.Errorf("click command: %w", err)
	}
	return nil
}

// CommandDetector asks a bridge command whether the user just cast a
// reading. Exit status 0 means yes, any other exit status means no.
type CommandDetector struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// Triggered runs the command once.
func (d CommandDetector) Triggered(ctx context.Context) (bool, error) {
	if strings.TrimSpace(d.Name) == "" {
		return false, errors.New("detect command not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeoutOr(d.Timeout))
	defer cancel()
	err := exec.CommandContext(ctx, d.Name, d.Args...).Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return false, nil
	}
	return false, fmt.Errorf("detect command: %w", err)
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultCommandTimeout
	}
	return d
}
