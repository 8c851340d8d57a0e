package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"scribe/internal/faults"
	"scribe/internal/logging"
	"scribe/internal/params"
	"scribe/internal/pipeline"
)

// LockName is the single-instance lock file created in the log directory.
const LockName = "scribe.lock"

// Checker verifies that a capture source is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// Session runs one orchestrator under the single-instance lock.
type Session struct {
	orch     *pipeline.Orchestrator
	checks   []Checker
	logger   *slog.Logger
	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	mu      sync.Mutex
	id      string
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// New prepares a session whose lock lives in lockDir. Every checker must
// pass before the worker starts.
func New(lockDir string, orch *pipeline.Orchestrator, logger *slog.Logger, checks ...Checker) (*Session, error) {
	if orch == nil || orch.Host == nil {
		return nil, errors.New("session requires an orchestrator with a host")
	}
	if lockDir == "" {
		return nil, errors.New("session requires a lock directory")
	}
	lockPath := filepath.Join(lockDir, LockName)
	return &Session{
		orch:     orch,
		checks:   checks,
		logger:   logging.NewComponentLogger(logger, "session"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// ID returns the session identifier assigned by Start.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Running reports whether the worker is active.
func (s *Session) Running() bool { return s.running.Load() }

// LockPath returns the single-instance lock file path.
func (s *Session) LockPath() string { return s.lockPath }

// Start acquires the lock, runs the setup checks, and launches the worker.
// A failed capture check returns faults.ConnectionLost and leaves the
// orchestrator blocked.
func (s *Session) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("session already running")
	}
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scribe session is already running")
	}

	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			_ = s.lock.Unlock()
			s.orch.Block()
			s.orch.Host.Log(fmt.Sprintf("无法连接采集源：%v", err))
			return faults.New(faults.ConnectionLost, "locate capture source", err)
		}
	}
	s.orch.Host.Log("采集源已就绪")
	if !s.checkStore(ctx) {
		s.orch.Resolver = pipeline.NoParams
	}

	id := uuid.NewString()
	logger := s.logger.With(logging.String(logging.FieldSessionID, id))
	workerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.id = id
	s.cancel = cancel
	s.done = done
	s.err = nil
	s.mu.Unlock()
	s.running.Store(true)

	logger.Info("capture session started",
		logging.String(logging.FieldEventType, "session_started"),
		logging.String("lock", s.lockPath),
		logging.String("ledger", s.orch.Host.LedgerPath()),
	)

	go func() {
		defer close(done)
		err := s.orch.Run(workerCtx)
		if err != nil {
			logging.ErrorWithContext(logger, "capture session halted", "session_halted", logging.Error(err))
		}
		if unlockErr := s.lock.Unlock(); unlockErr != nil {
			logging.WarnWithContext(logger, "failed to release session lock", "session_unlock_failed",
				logging.Error(unlockErr),
				logging.String(logging.FieldErrorHint, "remove "+s.lockPath+" if no scribe is running"),
				logging.String(logging.FieldImpact, "the next session may report a running instance"),
			)
		}
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.running.Store(false)
		logger.Info("capture session stopped", logging.String(logging.FieldEventType, "session_stopped"))
	}()
	return nil
}

// Stop cancels the worker and waits for the in-flight cycle to finish.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	_ = s.Wait()
}

// Wait blocks until the worker exits and returns its error.
func (s *Session) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// checkStore reports the parameter store status to the host and returns
// whether lookups should run for this session.
func (s *Session) checkStore(ctx context.Context) bool {
	host := s.orch.Host
	path := host.StorePath()
	if path == "" {
		host.Log("未配置参数库，将不追加参数列。")
		return false
	}
	store, err := params.Open(path, true)
	if err != nil {
		if errors.Is(err, params.ErrStoreMissing) {
			host.Log(fmt.Sprintf("参数库不存在：%s，将不追加参数列。", path))
		} else {
			host.Log(fmt.Sprintf("参数库连接失败：%v（将不追加参数列）", err))
		}
		return false
	}
	defer store.Close()

	ok, err := store.HasTable(ctx)
	if err != nil {
		host.Log(fmt.Sprintf("参数库连接失败：%v（将不追加参数列）", err))
		return false
	}
	if !ok {
		host.Log(fmt.Sprintf("参数库连接成功，但未找到表 %s，将不追加参数列。", params.Table))
		return false
	}
	n, err := store.Count(ctx)
	if err != nil {
		host.Log(fmt.Sprintf("参数库连接失败：%v（将不追加参数列）", err))
		return false
	}
	host.Log(fmt.Sprintf("参数库连接成功：%s（%s 共 %d 条）", filepath.Base(path), params.Table, n))
	return true
}
