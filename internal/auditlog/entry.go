// Package auditlog persists one line per observed moderation event into an
// append-only text file and answers time-windowed queries over it by
// scanning backward from the end.
package auditlog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the fixed timestamp format of a log line, rendered in the
// process-local timezone.
const TimeLayout = "02.01.2006 15:04:05"

// Entry is one immutable audit record. A zero Time marks a lifecycle entry
// (startup snapshot etc.); nil optional fields are rendered explicitly as
// absent rather than omitted, so every line carries the full field list.
type Entry struct {
	Time      time.Time
	Stage     string
	ChatID    *int64
	ChatTitle *string
	UserID    *int64
	UserName  *string
	UserBio   *string
	MessageID *int
	Text      *string
}

// Lifecycle builds a process-lifecycle entry: stage text only, no timestamp
// and no message fields. Window queries always include such entries.
func Lifecycle(stage string) Entry {
	return Entry{Stage: stage}
}

const (
	fieldSep = "\t"
	absent   = "-"
)

// field order on the wire; parse and encode must agree.
var fieldKeys = []string{"time", "stage", "chat_id", "chat_title", "user_id", "user_name", "user_bio", "message_id", "text"}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// encodeLine renders the entry as a single self-contained line, no trailing
// newline.
func encodeLine(e Entry) string {
	values := make([]string, len(fieldKeys))

	if e.Time.IsZero() {
		values[0] = absent
	} else {
		values[0] = e.Time.Format(TimeLayout)
	}
	values[1] = escape(e.Stage)
	values[2] = encodeInt64(e.ChatID)
	values[3] = encodeString(e.ChatTitle)
	values[4] = encodeInt64(e.UserID)
	values[5] = encodeString(e.UserName)
	values[6] = encodeString(e.UserBio)
	values[7] = encodeInt(e.MessageID)
	values[8] = encodeString(e.Text)

	parts := make([]string, len(fieldKeys))
	for i, key := range fieldKeys {
		parts[i] = key + "=" + values[i]
	}
	return strings.Join(parts, fieldSep)
}

func encodeInt64(v *int64) string {
	if v == nil {
		return absent
	}
	return strconv.FormatInt(*v, 10)
}

func encodeInt(v *int) string {
	if v == nil {
		return absent
	}
	return strconv.Itoa(*v)
}

func encodeString(v *string) string {
	if v == nil {
		return absent
	}
	return escape(*v)
}

// parseLine decodes one log line. Consumers tolerate malformed lines by
// skipping them, so any structural violation is an error here, never a panic.
func parseLine(line string) (Entry, error) {
	parts := strings.Split(line, fieldSep)
	if len(parts) != len(fieldKeys) {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", len(fieldKeys), len(parts))
	}

	values := make([]string, len(fieldKeys))
	for i, part := range parts {
		key, value, found := strings.Cut(part, "=")
		if !found || key != fieldKeys[i] {
			return Entry{}, fmt.Errorf("malformed field %q at position %d", part, i)
		}
		values[i] = value
	}

	var e Entry
	if values[0] != absent {
		ts, err := time.ParseInLocation(TimeLayout, values[0], time.Local)
		if err != nil {
			return Entry{}, fmt.Errorf("bad timestamp %q: %w", values[0], err)
		}
		e.Time = ts
	}
	e.Stage = unescape(values[1])

	var err error
	if e.ChatID, err = parseInt64(values[2]); err != nil {
		return Entry{}, err
	}
	e.ChatTitle = parseString(values[3])
	if e.UserID, err = parseInt64(values[4]); err != nil {
		return Entry{}, err
	}
	e.UserName = parseString(values[5])
	e.UserBio = parseString(values[6])
	if e.MessageID, err = parseInt(values[7]); err != nil {
		return Entry{}, err
	}
	e.Text = parseString(values[8])

	return e, nil
}

func parseInt64(s string) (*int64, error) {
	if s == absent {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad integer %q: %w", s, err)
	}
	return &v, nil
}

func parseInt(s string) (*int, error) {
	if s == absent {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("bad integer %q: %w", s, err)
	}
	return &v, nil
}

func parseString(s string) *string {
	if s == absent {
		return nil
	}
	v := unescape(s)
	return &v
}
