package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"

	"scribe/internal/faults"
	"scribe/internal/fileutil"
	"scribe/internal/logging"
	"scribe/internal/reading"
)

const (
	// DefaultRetries is the number of attempts made before giving up.
	DefaultRetries = 3
	// DefaultRetryDelay separates attempts.
	DefaultRetryDelay = 300 * time.Millisecond
)

var errContended = errors.New("ledger is locked by another writer")

// Result describes what Append did.
type Result struct {
	Written  bool
	Row      int
	Sequence int
}

// Writer appends records to the ledger at Path.
type Writer struct {
	Path       string
	Retries    int
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// NewWriter returns a Writer with default retry settings.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{
		Path:       path,
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
		Logger:     logging.NewComponentLogger(logger, "ledger"),
	}
}

// ParamColumn names the ledger column for the 1-based parameter index.
func ParamColumn(i int) string {
	return "参数" + strconv.Itoa(i)
}

// Append writes rec and its parameter values as one ledger row. A record
// whose content hash matches the most recent written row is skipped with
// Written=false. Lock contention, or a workbook another program will not let
// go of, that outlives the retry budget returns faults.LedgerLocked. Any other
// failure returns faults.LedgerWriteError.
func (w *Writer) Append(ctx context.Context, rec *reading.Record, params []string) (Result, error) {
	if rec == nil {
		return Result{}, faults.New(faults.LedgerWriteError, "append", errors.New("nil record"))
	}
	if strings.TrimSpace(w.Path) == "" {
		return Result{}, faults.New(faults.LedgerWriteError, "append", errors.New("ledger path is empty"))
	}
	logger := w.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	attempts := w.Retries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, w.RetryDelay); err != nil {
				break
			}
		}
		result, err := w.appendOnce(rec, params)
		if err == nil {
			return result, nil
		}
		lastErr = err
		logger.Debug("ledger append attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("attempts", attempts),
			logging.Error(err),
		)
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	if errors.Is(lastErr, errContended) {
		return Result{}, faults.New(faults.LedgerLocked, w.Path, lastErr)
	}
	return Result{}, faults.New(faults.LedgerWriteError, w.Path, lastErr)
}

func (w *Writer) appendOnce(rec *reading.Record, params []string) (Result, error) {
	if dir := filepath.Dir(w.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	lock := flock.New(w.Path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("lock ledger: %w", err)
	}
	if !locked {
		return Result{}, errContended
	}
	defer func() { _ = lock.Unlock() }()

	book, err := openBook(w.Path)
	if err != nil {
		return Result{}, err
	}
	defer book.Close()

	sheet := book.GetSheetName(book.GetActiveSheetIndex())
	s, err := loadSheet(book, sheet)
	if err != nil {
		return Result{}, err
	}

	cells := rec.Cells()
	changed := s.ensureColumns(reading.Columns)
	for _, c := range cells {
		if s.ensureColumn(c.Column) {
			changed = true
		}
	}
	for i := range params {
		if s.ensureColumn(ParamColumn(i + 1)) {
			changed = true
		}
	}

	colTime := s.index(reading.ColWrittenAt)
	colHash := s.index(reading.ColContentHash)
	colSeq := s.index(reading.ColSequence)

	if row := s.recentDuplicate(colTime, colHash, rec.ContentHash); row > 0 {
		if changed {
			if err := w.save(book); err != nil {
				return Result{}, err
			}
		}
		seq, _ := parseSequence(s.cell(row, colSeq))
		return Result{Written: false, Row: row, Sequence: seq}, nil
	}

	target := s.firstOpenRow(colTime)
	seq := target - 1
	if target > 2 {
		if prev, ok := parseSequence(s.cell(target-1, colSeq)); ok {
			seq = prev + 1
		}
	}

	values := make([]reading.Cell, 0, len(cells)+len(params)+1)
	values = append(values, reading.Cell{Column: reading.ColSequence, Value: seq})
	for _, c := range cells {
		if c.Column != reading.ColSequence {
			values = append(values, c)
		}
	}
	for i, p := range params {
		values = append(values, reading.Cell{Column: ParamColumn(i + 1), Value: p})
	}
	for _, c := range values {
		if err := s.set(target, s.index(c.Column), c.Value); err != nil {
			return Result{}, err
		}
	}

	if err := w.save(book); err != nil {
		return Result{}, err
	}
	return Result{Written: true, Row: target, Sequence: seq}, nil
}

// save replaces the ledger file atomically.
func (w *Writer) save(book *excelize.File) error {
	err := fileutil.WriteFileAtomic(w.Path, 0o644, func(out io.Writer) error {
		return book.Write(out)
	})
	if err != nil {
		if heldElsewhere(err) {
			return fmt.Errorf("save ledger: %w: %w", errContended, err)
		}
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// heldElsewhere reports whether err means another program holds the workbook
// or its directory, such as a spreadsheet app keeping the file open.
func heldElsewhere(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.ETXTBSY)
}

func openBook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return excelize.NewFile(), nil
		}
		return nil, fmt.Errorf("stat ledger: %w", err)
	}
	book, err := excelize.OpenFile(path)
	if err != nil {
		if heldElsewhere(err) {
			return nil, fmt.Errorf("open ledger: %w: %w", errContended, err)
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return book, nil
}

func parseSequence(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
