package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// timestampLayouts are tried in order. Backends running without timezone
// support emit naive datetimes, which are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a display-only date from the backend. Decoding never fails:
// a value that matches no known layout keeps its raw text and a zero Time.
type Timestamp struct {
	time.Time
	Raw string
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	*ts = Timestamp{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	ts.Raw = s
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case !ts.IsZero():
		return json.Marshal(ts.Time.Format(time.RFC3339Nano))
	case ts.Raw != "":
		return json.Marshal(ts.Raw)
	default:
		return []byte("null"), nil
	}
}

// Format renders the timestamp with layout, falling back to the raw text.
func (ts Timestamp) Format(layout string) string {
	if ts.IsZero() {
		return ts.Raw
	}
	return ts.Time.Format(layout)
}
