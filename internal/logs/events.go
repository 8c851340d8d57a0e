package logs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"scribe/internal/logging"
)

// ErrNoArchive is returned by Latest when the directory holds no archive.
var ErrNoArchive = errors.New("no event archive found")

// DefaultPoll is the Follow cadence.
const DefaultPoll = 250 * time.Millisecond

// Latest returns the most recently modified file in dir matching pattern.
func Latest(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}
	var newest string
	var newestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest, newestMod = m, info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w in %s", ErrNoArchive, dir)
	}
	return newest, nil
}

// ReadEvents returns the last limit events in the archive at path and the
// offset just past the last complete line. A non-positive limit returns every
// event. Lines that fail to decode are skipped.
func ReadEvents(path string, limit int) ([]logging.LogEvent, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open event archive: %w", err)
	}
	defer file.Close()

	events, offset, err := decodeFrom(file)
	if err != nil {
		return nil, 0, err
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, offset, nil
}

// Follow emits events appended to path after offset until ctx ends. A
// truncated archive is read again from the start.
func Follow(ctx context.Context, path string, offset int64, poll time.Duration, emit func(logging.LogEvent)) error {
	if poll <= 0 {
		poll = DefaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		next, err := readAfter(path, offset, emit)
		if err != nil {
			return err
		}
		offset = next
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readAfter(path string, offset int64, emit func(logging.LogEvent)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open event archive: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat event archive: %w", err)
	}
	if offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek event archive: %w", err)
	}
	events, read, err := decodeFrom(file)
	if err != nil {
		return offset, err
	}
	for _, evt := range events {
		emit(evt)
	}
	return offset + read, nil
}

// decodeFrom reads complete lines from r and reports how many bytes they
// covered. A trailing partial line is left for the next read.
func decodeFrom(r io.Reader) ([]logging.LogEvent, int64, error) {
	reader := bufio.NewReader(r)
	var events []logging.LogEvent
	var consumed int64
	for {
		line, err := reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			return events, consumed, nil
		}
		if err != nil {
			return events, consumed, fmt.Errorf("read event archive: %w", err)
		}
		consumed += int64(len(line))
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var evt logging.LogEvent
		if json.Unmarshal(line, &evt) == nil {
			events = append(events, evt)
		}
	}
}
