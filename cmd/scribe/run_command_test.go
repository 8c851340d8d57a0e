package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"scribe/internal/capture"
	"scribe/internal/config"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/trigger"
)

func TestBuildProbesPrefersCommands(t *testing.T) {
	cfg := config.Default()
	cfg.Capture.PrimaryFile = "/tmp/reading.txt"
	cfg.Capture.PrimaryCommand = []string{"bridge", "read", "result"}
	cfg.Capture.ClickCommand = []string{"bridge", "click"}

	primary, intro, checks := buildProbes(&cfg)
	probe, ok := primary.(capture.CommandProbe)
	if !ok {
		t.Fatalf("expected a command probe, got %T", primary)
	}
	if probe.Name != "bridge" || len(probe.Args) != 2 || probe.Timeout != cfg.CommandTimeout() {
		t.Fatalf("unexpected probe %+v", probe)
	}
	if intro != nil {
		t.Fatalf("expected no intro probe, got %T", intro)
	}
	if len(checks) != 2 {
		t.Fatalf("expected probe and click checks, got %d", len(checks))
	}
}

func TestBuildProbesFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Capture.PrimaryFile = dir + "/reading.txt"
	cfg.Capture.IntroFile = dir + "/intro.txt"

	primary, intro, checks := buildProbes(&cfg)
	if _, ok := primary.(capture.FileProbe); !ok {
		t.Fatalf("expected a file probe, got %T", primary)
	}
	if p, ok := intro.(capture.FileProbe); !ok || p.Path != cfg.Capture.IntroFile {
		t.Fatalf("unexpected intro probe %#v", intro)
	}
	for _, check := range checks {
		if err := check.Check(context.Background()); err != nil {
			t.Fatalf("check: %v", err)
		}
	}
}

func TestBuildTriggerByMode(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Capture.PrimaryFile = dir + "/reading.txt"
	cfg.Capture.DetectCommand = []string{"true"}
	logger := logging.NewNop()

	cases := []struct {
		mode  string
		check func(trigger.Trigger) bool
	}{
		{config.ModeAuto, func(tr trigger.Trigger) bool {
			it, ok := tr.(*trigger.Interval)
			return ok && it.Every == cfg.Interval() && it.Clicker == nil
		}},
		{config.ModeEvent, func(tr trigger.Trigger) bool { _, ok := tr.(*trigger.EventPoll); return ok }},
		{config.ModeWatch, func(tr trigger.Trigger) bool { _, ok := tr.(*trigger.FileWatch); return ok }},
	}
	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			c := cfg
			c.Capture.Mode = tc.mode
			tr, cleanup, err := buildTrigger(&c, logger)
			if err != nil {
				t.Fatalf("buildTrigger: %v", err)
			}
			defer cleanup()
			if !tc.check(tr) {
				t.Fatalf("unexpected trigger %T for mode %s", tr, tc.mode)
			}
		})
	}

	c := cfg
	c.Capture.Mode = "sometimes"
	if _, _, err := buildTrigger(&c, logger); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestRunCapturesIntoLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	writeFile(t, env.primaryPath, sampleCapture)
	writeFile(t, env.introPath, sampleIntro)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, _, err := runCLIContext(t, ctx, []string{"run"}, env.configPath)
		done <- result{out, err}
	}()

	deadline := time.Now().Add(15 * time.Second)
	for {
		if _, rows, err := ledger.ReadRows(env.ledgerPath, 0); err == nil && len(rows) == 1 {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			res := <-done
			t.Fatalf("ledger never received a row; err=%v output:\n%s", res.err, res.out)
		}
		time.Sleep(100 * time.Millisecond)
	}
	cancel()

	var res result
	select {
	case res = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	requireContains(t, res.out, "采集源已就绪")
	requireContains(t, res.out, "参数库不存在")
	requireContains(t, res.out, "记录完成 ✅ 卦象名字：观之否")
	requireContains(t, res.out, "已停止采集")

	out, _, err := runCLI(t, []string{"logs", "--status", "-n", "0"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "记录完成 ✅ 卦象名字：观之否")
	if strings.Contains(out, "capture session started") {
		t.Fatalf("--status must hide structured events:\n%s", out)
	}
}

func TestRunFailsWithoutCaptureSource(t *testing.T) {
	env := setupCLITestEnv(t)
	env.primaryPath = env.baseDir + "/missing/reading.txt"
	writeTestConfig(t, env, "auto", "")

	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected run to fail when the capture directory is missing")
	}
}
