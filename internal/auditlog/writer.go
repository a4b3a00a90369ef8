package auditlog

import (
	"fmt"
	"os"
	"sync"

	"chatguard/internal/metrics"
)

// Writer appends audit entries to the log file, one line per entry, synced
// to disk on every write. Losing audit capability undermines the moderation
// guarantee, so any write failure is returned to the caller, which treats it
// as fatal.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// NewWriter opens (or creates) the log file for appending.
func NewWriter(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log %q: %w", path, err)
	}
	return &Writer{file: file}, nil
}

// Record appends one entry. Writes are serialized so that append order is
// event order; each line is flushed before Record returns.
func (w *Writer) Record(e Entry) error {
	line := encodeLine(e) + "\n"

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.WriteString(line); err != nil {
		return fmt.Errorf("audit log write failed: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("audit log sync failed: %w", err)
	}

	metrics.AuditEntriesTotal.Inc()
	return nil
}

// Close releases the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
