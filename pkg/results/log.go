// Package results persists what provisioning did: an append-only log of
// command outputs and a small JSON record store.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileLayout is the timestamp layout of log file names, e.g.
// 19-10-2026_14h-05m.txt.
const FileLayout = "02-01-2006_15h-04m"

const separator = "----------------------------------------"

// Sink receives one labelled output per executed operation.
type Sink interface {
	Append(label, output string) error
}

// Log appends entries to a text file. Each entry is the label, the output
// and a separator line.
type Log struct {
	mu   sync.Mutex
	path string
}

// NewLog returns a Log writing to dir/<timestamp>.txt. The directory is
// created if needed.
func NewLog(dir string, now time.Time) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir %s: %w", dir, err)
	}
	return &Log{path: filepath.Join(dir, now.Format(FileLayout)+".txt")}, nil
}

// Path returns the log file.
func (l *Log) Path() string {
	return l.path
}

func (l *Log) Append(label, output string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log %s: %w", l.path, err)
	}
	defer f.Close()

	var b strings.Builder
	b.WriteString(label)
	b.WriteString("\n")
	if output != "" {
		b.WriteString(output)
		if !strings.HasSuffix(output, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString(separator)
	b.WriteString("\n")
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write log %s: %w", l.path, err)
	}
	return nil
}

// Discard drops every entry.
var Discard Sink = discard{}

type discard struct{}

func (discard) Append(string, string) error { return nil }
