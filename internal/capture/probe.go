package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Probe returns the current text of one panel. Implementations may return
// stale or empty text at any time.
type Probe interface {
	Text(ctx context.Context) (string, error)
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(ctx context.Context) (string, error)

// Text implements Probe.
func (f ProbeFunc) Text(ctx context.Context) (string, error) { return f(ctx) }

// FileProbe reads a panel snapshot that the automation bridge keeps current
// on disk. A missing file reads as empty text.
type FileProbe struct {
	Path string
}

// Text implements Probe.
func (p FileProbe) Text(context.Context) (string, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read capture file: %w", err)
	}
	return string(data), nil
}

// Check verifies that the snapshot's directory is reachable.
func (p FileProbe) Check(context.Context) error {
	if strings.TrimSpace(p.Path) == "" {
		return errors.New("capture file not configured")
	}
	dir := filepath.Dir(p.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("capture directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("capture directory %s is not a directory", dir)
	}
	return nil
}

// CommandProbe runs a bridge helper and returns its stdout.
type CommandProbe struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// Text implements Probe.
func (p CommandProbe) Text(ctx context.Context) (string, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, p.Name, p.Args...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("run %s: %w (%s)", p.Name, err, detail)
		}
		return "", fmt.Errorf("run %s: %w", p.Name, err)
	}
	return stdout.String(), nil
}

// Check runs the helper once; the setup step treats failure as a lost
// connection to the application.
func (p CommandProbe) Check(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("capture command not configured")
	}
	if _, err := exec.LookPath(p.Name); err != nil {
		return fmt.Errorf("capture command %s: %w", p.Name, err)
	}
	_, err := p.Text(ctx)
	return err
}
