package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"scribe/internal/capture"
	"scribe/internal/faults"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/params"
	"scribe/internal/reading"
	"scribe/internal/trigger"
)

// Cycle tunables.
const (
	DefaultCooldown    = 600 * time.Millisecond
	DefaultAttempts    = 3
	DefaultWaitTimeout = 600 * time.Millisecond
	DefaultWaitPoll    = 150 * time.Millisecond
	DefaultRetryGap    = 80 * time.Millisecond
)

// Orchestrator drives capture cycles from a Trigger.
type Orchestrator struct {
	Host    Host
	Primary capture.Probe
	Intro   capture.Probe
	Trigger trigger.Trigger
	Reader  *capture.Reader

	// Resolver and Ledger default to the store and ledger named by Host.
	Resolver Resolver
	Ledger   Appender

	Now    func() time.Time
	Logger *slog.Logger

	Cooldown    time.Duration
	Attempts    int
	WaitTimeout time.Duration
	WaitPoll    time.Duration
	RetryGap    time.Duration

	mu            sync.Mutex
	state         State
	cooldownUntil time.Time
	lastShown     string
}

// New returns an Orchestrator with default tunables.
func New(host Host, primary, intro capture.Probe, trig trigger.Trigger, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		Host:        host,
		Primary:     primary,
		Intro:       intro,
		Trigger:     trig,
		Reader:      capture.NewReader(primary),
		Now:         time.Now,
		Logger:      logging.NewComponentLogger(logger, "pipeline"),
		Cooldown:    DefaultCooldown,
		Attempts:    DefaultAttempts,
		WaitTimeout: DefaultWaitTimeout,
		WaitPoll:    DefaultWaitPoll,
		RetryGap:    DefaultRetryGap,
	}
}

// State returns the current cycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Block moves the orchestrator into its terminal state.
func (o *Orchestrator) Block() { o.setState(Blocked) }

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run handles triggers until ctx is cancelled. A cycle that has started
// always finishes; per-cycle failures are logged and the loop continues.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.Trigger == nil {
		return errors.New("pipeline: no trigger configured")
	}
	logger := o.logger()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if o.State() == Blocked {
			return faults.New(faults.ConnectionLost, "pipeline blocked", nil)
		}
		if err := o.Trigger.Next(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for trigger: %w", err)
		}
		outcome, err := o.HandleTrigger(context.WithoutCancel(ctx))
		if err != nil {
			if faults.Halts(err) {
				o.Block()
				return err
			}
			logging.WarnWithContext(logger, "capture cycle failed", "cycle_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "close the ledger in other programs and check the disk"),
				logging.String(logging.FieldImpact, "this capture was not recorded"),
			)
			continue
		}
		logger.Debug("capture cycle finished",
			logging.String("state", outcome.State.String()),
			logging.Bool("written", outcome.Written),
			logging.Int("sequence", outcome.Sequence),
		)
	}
}

// HandleTrigger runs one cycle. Triggers inside the cooldown window are
// ignored. At most one record is appended per call.
func (o *Orchestrator) HandleTrigger(ctx context.Context) (Outcome, error) {
	now := o.now()
	o.mu.Lock()
	if o.state == Blocked {
		o.mu.Unlock()
		return Outcome{State: Blocked}, faults.New(faults.ConnectionLost, "pipeline blocked", nil)
	}
	if now.Before(o.cooldownUntil) {
		o.mu.Unlock()
		return Outcome{State: Idle}, nil
	}
	o.cooldownUntil = now.Add(o.Cooldown)
	o.state = Cooldown
	o.mu.Unlock()
	defer o.setState(Idle)

	attempts := o.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		o.setState(Reading)
		capture.WaitNonEmpty(ctx, o.Primary, o.WaitTimeout, o.WaitPoll)
		text := o.reader().Read(ctx)
		if strings.TrimSpace(text) == "" || !capture.LooksComplete(text) {
			o.gap(ctx)
			continue
		}

		intro := o.readIntro(ctx)
		rec, err := reading.Assemble(text, intro, o.now())
		if err != nil {
			o.logger().Debug("capture not parseable yet", logging.Int("attempt", attempt), logging.Error(err))
			o.gap(ctx)
			continue
		}
		o.setState(Parsed)

		values := o.resolve(ctx, rec)
		o.setState(Resolved)

		result, err := o.appender().Append(ctx, rec, values)
		if err != nil {
			o.Host.Log(fmt.Sprintf("写入账本失败：%v", err))
			return Outcome{State: Resolved}, err
		}
		if !result.Written {
			return Outcome{State: Resolved, Sequence: result.Sequence, Row: result.Row}, nil
		}
		o.setState(Written)
		o.announce(rec.WithSequence(result.Sequence), values)
		return Outcome{State: Written, Written: true, Sequence: result.Sequence, Row: result.Row}, nil
	}
	return Outcome{State: Idle}, nil
}

func (o *Orchestrator) resolve(ctx context.Context, rec *reading.Record) []string {
	values, err := o.resolver().Resolve(ctx, rec.Name(), rec.FallbackKey())
	if err != nil {
		o.Host.Log(fmt.Sprintf("查询数据库失败：%v（已忽略，不影响记录）", err))
		logging.WarnWithContext(o.logger(), "parameter lookup failed", "params_unavailable",
			logging.Error(err),
			logging.String("name", rec.Name()),
			logging.String(logging.FieldErrorHint, "check the parameter store path"),
			logging.String(logging.FieldImpact, "record written without parameter columns"),
		)
		return nil
	}
	return values
}

func (o *Orchestrator) announce(rec *reading.Record, values []string) {
	fields := o.Host.ConfiguredFields()
	if fields == nil {
		fields = DefaultFields
	}
	line := ComposeLine(fields, rec, values)
	identity := strings.TrimSpace(rec.Name())
	if identity == "" {
		identity = line
	}
	o.mu.Lock()
	repeat := identity == o.lastShown
	o.lastShown = identity
	o.mu.Unlock()
	if !repeat {
		o.Host.Log(line)
	}
}

func (o *Orchestrator) readIntro(ctx context.Context) string {
	if o.Intro == nil {
		return ""
	}
	text, err := o.Intro.Text(ctx)
	if err != nil {
		return ""
	}
	return text
}

func (o *Orchestrator) gap(ctx context.Context) {
	if o.RetryGap <= 0 {
		return
	}
	timer := time.NewTimer(o.RetryGap)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (o *Orchestrator) reader() *capture.Reader {
	if o.Reader == nil {
		o.Reader = capture.NewReader(o.Primary)
	}
	return o.Reader
}

func (o *Orchestrator) resolver() Resolver {
	if o.Resolver != nil {
		return o.Resolver
	}
	return params.Resolver{Path: o.Host.StorePath()}
}

func (o *Orchestrator) appender() Appender {
	if o.Ledger != nil {
		return o.Ledger
	}
	return ledger.NewWriter(o.Host.LedgerPath(), o.Logger)
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}
