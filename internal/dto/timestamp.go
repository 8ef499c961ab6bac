package dto

import (
	"errors"
	"strings"
	"time"
)

// TimestampLayout is the wire format for timestamps: ISO 8601 without offset, UTC.
const TimestampLayout = "2006-01-02T15:04:05"

const timestampFractionLayout = "2006-01-02T15:04:05.000000"

// ErrInvalidTimestamp is returned when a value is not an ISO 8601 date or date-time.
var ErrInvalidTimestamp = errors.New("invalid ISO 8601 timestamp")

var timestampLayouts = []string{
	time.RFC3339Nano,
	TimestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO 8601 date or date-time. Values without an
// offset are taken as UTC; values with one are converted to UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

// Timestamp renders a time.Time in TimestampLayout. The zero time renders as null.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	tm := time.Time(t)
	if tm.IsZero() {
		return []byte("null"), nil
	}
	tm = tm.UTC()
	layout := TimestampLayout
	if tm.Nanosecond() != 0 {
		layout = timestampFractionLayout
	}
	return []byte(`"` + tm.Format(layout) + `"`), nil
}

// String returns the wire representation without quotes.
func (t Timestamp) String() string {
	tm := time.Time(t)
	if tm.IsZero() {
		return ""
	}
	return tm.UTC().Format(TimestampLayout)
}
