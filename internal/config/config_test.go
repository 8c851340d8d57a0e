package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"scribe/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	_, resolved, exists, err := config.Load("")
	if err == nil {
		t.Fatal("expected missing capture source to fail validation")
	}
	if resolved != "" || exists {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if !strings.Contains(err.Error(), "scribe config init") {
		t.Fatalf("expected init hint, got %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	configPath := filepath.Join(t.TempDir(), "scribe.toml")
	content := `
[paths]
ledger = "~/books/ledger.xlsx"
store = "~/books/params.db"

[capture]
mode = " EVENT "
primary_file = "~/bridge/reading.txt"
detect_command = ["bridge", "detect", "--enter"]

[output]
print_fields = ["卦象名字", " ", "序号"]

[logging]
format = "JSON"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.Paths.Ledger != filepath.Join(tempHome, "books", "ledger.xlsx") {
		t.Fatalf("unexpected ledger path %q", cfg.Paths.Ledger)
	}
	if cfg.Paths.Store != filepath.Join(tempHome, "books", "params.db") {
		t.Fatalf("unexpected store path %q", cfg.Paths.Store)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "scribe", "logs") {
		t.Fatalf("unexpected log dir %q", cfg.Paths.LogDir)
	}
	if cfg.Capture.Mode != config.ModeEvent {
		t.Fatalf("unexpected mode %q", cfg.Capture.Mode)
	}
	if diff := cmp.Diff([]string{"bridge", "detect", "--enter"}, cfg.Capture.DetectCommand); diff != "" {
		t.Fatalf("detect command mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"卦象名字", "序号"}, cfg.Output.PrintFields); diff != "" {
		t.Fatalf("print fields mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	if cfg.Interval().Seconds() != 5 {
		t.Fatalf("unexpected interval %s", cfg.Interval())
	}
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Paths.Ledger = "/tmp/ledger.xlsx"
		cfg.Capture.PrimaryFile = "/tmp/reading.txt"
		return cfg
	}
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"short interval", func(c *config.Config) { c.Capture.IntervalSeconds = 2 }, "interval_seconds"},
		{"event without detector", func(c *config.Config) { c.Capture.Mode = config.ModeEvent }, "detect_command"},
		{"watch needs file", func(c *config.Config) {
			c.Capture.Mode = config.ModeWatch
			c.Capture.PrimaryFile = ""
			c.Capture.PrimaryCommand = []string{"bridge"}
		}, "primary_file"},
		{"unknown mode", func(c *config.Config) { c.Capture.Mode = "manual" }, "capture.mode"},
		{"command source", func(c *config.Config) {
			c.Capture.PrimaryFile = ""
			c.Capture.PrimaryCommand = []string{"bridge", "read"}
		}, ""},
		{"no ledger", func(c *config.Config) { c.Paths.Ledger = "" }, "paths.ledger"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config must load: %v", err)
	}
	if !exists || cfg.Capture.Mode != config.ModeAuto {
		t.Fatalf("unexpected sample config %+v", cfg.Capture)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.LogDir); err != nil || !info.IsDir() {
		t.Fatalf("log dir not created: %v", err)
	}
}
