package auditlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"chatguard/internal/metrics"
)

// scanSlack bounds the backward walk: once the scan reaches entries more
// than this much older than the window start it stops, assuming timestamps
// are near-monotonic. Out-of-order or clock-skewed entries beyond the slack
// are missed; that is an accepted accuracy/scan-cost trade-off, not a bug to
// fix here.
const scanSlack = time.Hour

const scanBlockSize = 64 * 1024

// Query answers time-window lookups against the audit log file. It reads
// the same file the Writer appends to; an in-flight append may or may not be
// visible, which is acceptable.
type Query struct {
	path     string
	truncate int
}

// NewQuery creates a query engine over the log at path. truncate is the
// display budget, in runes, applied by Format; it never affects stored data.
func NewQuery(path string, truncate int) *Query {
	return &Query{path: path, truncate: truncate}
}

// Window returns entries whose timestamp falls within [start, end]
// inclusive, plus all lifecycle entries encountered before the scan
// terminates (lifecycle entries are window-agnostic by policy). Results are
// chronological. Unparseable and blank lines are skipped.
func (q *Query) Window(start, end time.Time) ([]Entry, error) {
	file, err := os.Open(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			// A log that has not been written yet answers the query
			// with an empty window; it still counts as served.
			metrics.QueriesTotal.Inc()
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log %q: %w", q.path, err)
	}
	defer file.Close()

	cutoff := start.Add(-scanSlack)

	var out []Entry
	err = scanBackward(file, func(line string) bool {
		if strings.TrimSpace(line) == "" {
			return true
		}
		e, err := parseLine(line)
		if err != nil {
			return true
		}
		if e.Time.IsZero() {
			out = append(out, e)
			return true
		}
		if e.Time.Before(cutoff) {
			return false
		}
		if !e.Time.Before(start) && !e.Time.After(end) {
			out = append(out, e)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	// The walk collected newest-first; hand back chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	metrics.QueriesTotal.Inc()
	return out, nil
}

// Format renders one entry for display. The message text and biography are
// truncated to the configured rune budget with an ellipsis; the persisted
// line is never touched.
func (q *Query) Format(e Entry) string {
	var b strings.Builder

	ts := "startup"
	if !e.Time.IsZero() {
		ts = e.Time.Format(TimeLayout)
	}
	fmt.Fprintf(&b, "[%s] %s", ts, e.Stage)

	if e.ChatID != nil {
		fmt.Fprintf(&b, "\nchat %d", *e.ChatID)
		if e.ChatTitle != nil {
			fmt.Fprintf(&b, " «%s»", *e.ChatTitle)
		}
	}
	if e.UserID != nil {
		fmt.Fprintf(&b, "\nuser %d", *e.UserID)
		if e.UserName != nil {
			fmt.Fprintf(&b, " %s", *e.UserName)
		}
	}
	if e.MessageID != nil {
		fmt.Fprintf(&b, "\nmessage %d", *e.MessageID)
	}
	if e.Text != nil {
		fmt.Fprintf(&b, "\ntext: %s", truncateRunes(*e.Text, q.truncate))
	}
	if e.UserBio != nil {
		fmt.Fprintf(&b, "\nbio: %s", truncateRunes(*e.UserBio, q.truncate))
	}

	return b.String()
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

// scanBackward feeds lines to fn from the last line of the file toward the
// first, reading in fixed-size blocks. fn returns false to stop the walk.
func scanBackward(file *os.File, fn func(line string) bool) error {
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat audit log: %w", err)
	}

	offset := info.Size()
	carry := ""
	buf := make([]byte, scanBlockSize)

	for offset > 0 {
		blockStart := offset - scanBlockSize
		if blockStart < 0 {
			blockStart = 0
		}
		chunk := buf[:offset-blockStart]
		if _, err := file.ReadAt(chunk, blockStart); err != nil && err != io.EOF {
			return fmt.Errorf("failed to read audit log: %w", err)
		}

		lines := strings.Split(string(chunk)+carry, "\n")

		// lines[0] may continue into the yet-unread part of the file;
		// hold it back unless this block starts at offset zero.
		first := 0
		if blockStart > 0 {
			carry = lines[0]
			first = 1
		} else {
			carry = ""
		}

		for i := len(lines) - 1; i >= first; i-- {
			if !fn(lines[i]) {
				return nil
			}
		}

		offset = blockStart
	}

	return nil
}
