package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// EventArchive is a LogEventSink that appends each event as one JSON line.
type EventArchive struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewEventArchive opens path for appending, creating its directory. A blank
// path returns a nil archive, which ignores every call.
func NewEventArchive(path string) (*EventArchive, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	if err := ensureLogDir(path); err != nil {
		return nil, fmt.Errorf("ensure archive dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event archive %s: %w", path, err)
	}
	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	return &EventArchive{file: file, enc: enc}, nil
}

// Append implements LogEventSink. Encoding errors are ignored.
func (a *EventArchive) Append(evt LogEvent) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enc != nil {
		_ = a.enc.Encode(evt)
	}
}

// Close closes the file. Later Appends are dropped.
func (a *EventArchive) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file, a.enc = nil, nil
	return err
}
