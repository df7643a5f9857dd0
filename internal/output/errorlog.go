package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const ErrorLogName = "error.log"

type ErrorEntry struct {
	Time    time.Time
	Message string
}

// ErrorLog collects failures for one novel. It is safe for concurrent use.
type ErrorLog struct {
	mu      sync.Mutex
	entries []ErrorEntry
	now     func() time.Time
}

func NewErrorLog() *ErrorLog {
	return &ErrorLog{now: time.Now}
}

func (l *ErrorLog) Record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now
	if l.now != nil {
		now = l.now
	}
	l.entries = append(l.entries, ErrorEntry{Time: now(), Message: msg})
}

func (l *ErrorLog) Entries() []ErrorEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]ErrorEntry(nil), l.entries...)
}

func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

// AppendErrorLog appends the entries of log to <dir>/error.log, one
// "[timestamp] message" line each. Nothing is created when log is empty.
func AppendErrorLog(dir string, log *ErrorLog) error {
	entries := log.Entries()
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "[%s] %s\n", e.Time.UTC().Format(time.RFC3339Nano), e.Message)
	}

	path := filepath.Join(dir, ErrorLogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}

	return f.Close()
}
