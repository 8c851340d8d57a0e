package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCapture = "公历：2025年10月8日8:42 星期三\n" +
	"农历：乙巳(蛇)年八月十七 辰时\n" +
	"\n" +
	"干支：乙巳 丙戌 庚子 庚辰\n" +
	"旬空：寅卯 午未 辰巳 申酉\n" +
	"寒露10月8日8:42  霜降10月23日11:52\n" +
	"初爻 ……"

const sampleIntro = "观之否；月卦身酉；世身在四爻；八节：寒露\n神煞：驿马-寅 桃花-酉"

type cliTestEnv struct {
	baseDir     string
	configPath  string
	ledgerPath  string
	storePath   string
	logDir      string
	primaryPath string
	introPath   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		baseDir:     base,
		configPath:  filepath.Join(homeDir, ".config", "scribe", "config.toml"),
		ledgerPath:  filepath.Join(base, "ledger", "ledger.xlsx"),
		storePath:   filepath.Join(base, "params.db"),
		logDir:      filepath.Join(base, "logs"),
		primaryPath: filepath.Join(base, "bridge", "reading.txt"),
		introPath:   filepath.Join(base, "bridge", "intro.txt"),
	}
	if err := os.MkdirAll(filepath.Dir(env.primaryPath), 0o755); err != nil {
		t.Fatalf("mkdir bridge: %v", err)
	}
	writeTestConfig(t, env, "auto", "")
	return env
}

// writeTestConfig writes a config pointing at env's paths. extra is appended
// to the [capture] table.
func writeTestConfig(t *testing.T, env *cliTestEnv, mode, extra string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
ledger = %q
store = %q
log_dir = %q

[capture]
mode = %q
interval_seconds = 3
primary_file = %q
intro_file = %q
%s
`, env.ledgerPath, env.storePath, env.logDir, mode, env.primaryPath, env.introPath, extra)
	if err := os.MkdirAll(filepath.Dir(env.configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args, configPath)
}

func runCLIContext(t *testing.T, ctx context.Context, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
