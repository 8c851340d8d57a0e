package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/capture"
	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/pipeline"
	"scribe/internal/session"
	"scribe/internal/trigger"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var mode string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture readings into the ledger until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if mode = strings.TrimSpace(strings.ToLower(mode)); mode != "" {
				cfg.Capture.Mode = mode
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return runCapture(cmd.Context(), cfg, cmd.OutOrStdout(), verbose)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Override capture.mode (auto, event, watch)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also write structured logs to stderr")
	return cmd
}

func runCapture(parent context.Context, cfg *config.Config, out io.Writer, verbose bool) error {
	signalCtx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("scribe-%s.log", runID))
	eventsPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("scribe-%s.events", runID))

	hub := logging.NewStreamHub()
	archive, archiveErr := logging.NewEventArchive(eventsPath)
	if archiveErr != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to initialize event archive: %v\n", archiveErr)
	} else if archive != nil {
		hub.AddSink(archive)
		defer archive.Close()
	}

	outputs := []string{logPath}
	if verbose {
		outputs = append([]string{"stderr"}, outputs...)
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		Stream:      hub,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	host := newStatusHost(cfg, logging.NewLineSink(out, hub, logger))
	primary, intro, checks := buildProbes(cfg)
	trig, closeTrigger, err := buildTrigger(cfg, logger)
	if err != nil {
		return err
	}
	defer closeTrigger()

	orch := pipeline.New(host, primary, intro, trig, logger)
	sess, err := session.New(cfg.Paths.LogDir, orch, logger, checks...)
	if err != nil {
		return err
	}
	if err := sess.Start(signalCtx); err != nil {
		return err
	}
	host.Log(fmt.Sprintf("开始采集（模式：%s）：%s", cfg.Capture.Mode, cfg.Paths.Ledger))
	logger.Info("scribe running",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("mode", cfg.Capture.Mode),
		logging.String("log_file", logPath),
	)

	err = sess.Wait()
	host.Log("已停止采集")
	return err
}

// statusHost feeds the orchestrator from the loaded config and prints status
// lines to the terminal.
type statusHost struct {
	cfg   *config.Config
	lines *logging.LineSink
}

func newStatusHost(cfg *config.Config, lines *logging.LineSink) *statusHost {
	return &statusHost{cfg: cfg, lines: lines}
}

func (h *statusHost) Log(line string)            { h.lines.Log(line) }
func (h *statusHost) ConfiguredFields() []string { return h.cfg.Output.PrintFields }
func (h *statusHost) LedgerPath() string         { return h.cfg.Paths.Ledger }
func (h *statusHost) StorePath() string          { return h.cfg.Paths.Store }

// checkFunc adapts a function to session.Checker.
type checkFunc func(ctx context.Context) error

func (f checkFunc) Check(ctx context.Context) error { return f(ctx) }

// buildProbes selects file or command probes for both panels. Commands win
// over files when both are configured. The intro probe is nil when neither
// is set.
func buildProbes(cfg *config.Config) (capture.Probe, capture.Probe, []session.Checker) {
	timeout := cfg.CommandTimeout()
	var checks []session.Checker

	var primary capture.Probe
	if args := cfg.Capture.PrimaryCommand; len(args) > 0 {
		probe := capture.CommandProbe{Name: args[0], Args: args[1:], Timeout: timeout}
		primary = probe
		checks = append(checks, checkFunc(probe.Check))
	} else {
		probe := capture.FileProbe{Path: cfg.Capture.PrimaryFile}
		primary = probe
		checks = append(checks, checkFunc(probe.Check))
	}

	var intro capture.Probe
	if args := cfg.Capture.IntroCommand; len(args) > 0 {
		intro = capture.CommandProbe{Name: args[0], Args: args[1:], Timeout: timeout}
	} else if cfg.Capture.IntroFile != "" {
		intro = capture.FileProbe{Path: cfg.Capture.IntroFile}
	}

	for _, args := range [][]string{cfg.Capture.ClickCommand, cfg.Capture.DetectCommand} {
		if len(args) > 0 {
			checks = append(checks, lookPathCheck(args[0]))
		}
	}
	return primary, intro, checks
}

func lookPathCheck(name string) session.Checker {
	return checkFunc(func(context.Context) error {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("bridge command %s: %w", name, err)
		}
		return nil
	})
}

// buildTrigger returns the trigger for cfg.Capture.Mode and a cleanup func.
func buildTrigger(cfg *config.Config, logger *slog.Logger) (trigger.Trigger, func(), error) {
	timeout := cfg.CommandTimeout()
	noop := func() {}
	switch cfg.Capture.Mode {
	case config.ModeAuto:
		t := &trigger.Interval{Every: cfg.Interval(), Logger: logger}
		if args := cfg.Capture.ClickCommand; len(args) > 0 {
			t.Clicker = trigger.CommandClicker{Name: args[0], Args: args[1:], Timeout: timeout}
		}
		return t, noop, nil
	case config.ModeEvent:
		args := cfg.Capture.DetectCommand
		if len(args) == 0 {
			return nil, noop, errors.New("event mode requires capture.detect_command")
		}
		return &trigger.EventPoll{
			Detector: trigger.CommandDetector{Name: args[0], Args: args[1:], Timeout: timeout},
		}, noop, nil
	case config.ModeWatch:
		t := &trigger.FileWatch{Path: cfg.Capture.PrimaryFile, Logger: logger}
		if err := t.Start(); err != nil {
			return nil, noop, err
		}
		return t, func() { _ = t.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown capture mode %q", cfg.Capture.Mode)
	}
}
