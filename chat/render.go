package chat

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Labels shown under a bubble.
const (
	LabelMine    = "You"
	LabelPartner = "Partner"
)

// Texts of the empty conversation placeholder.
const (
	EmptyTitle = "No messages yet"
	EmptyText  = "Say hi 👋 and start the conversation!"
)

const timeLayout = "15:04"

// A Bubble is one rendered message.
type Bubble struct {
	ID    string
	Text  string
	Time  string
	Label string
	Mine  bool
}

// Bubbles renders msgs from the point of view of uid. Times are shown in loc,
// or in the local zone when loc is nil.
func Bubbles(msgs []Message, uid string, loc *time.Location) []Bubble {
	out := make([]Bubble, len(msgs))
	for i, m := range msgs {
		mine := m.Sender == uid
		label := LabelPartner
		if mine {
			label = LabelMine
		}
		var ts any
		if !m.Timestamp.IsZero() {
			ts = m.Timestamp
		}
		out[i] = Bubble{
			ID:    m.ID,
			Text:  m.Text,
			Time:  FormatTime(ts, loc),
			Label: label,
			Mine:  mine,
		}
	}
	return out
}

// FormatTime formats a timestamp as 24-hour hour:minute. The value may be a
// time.Time or any raw form accepted by ParseTimestamp. It returns an empty
// string when v is absent or cannot be parsed.
func FormatTime(v any, loc *time.Location) string {
	ts, ok := ParseTimestamp(v)
	if !ok {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format(timeLayout)
}

// UnixMicros is a timestamp in unix microseconds. Plain integers passed to
// ParseTimestamp are taken as milliseconds; backends that keep microsecond
// precision hand back this type instead.
type UnixMicros int64

// ParseTimestamp normalizes the timestamp representations a backend may hand
// back: time.Time, *time.Time, UnixMicros, unix milliseconds as an integer,
// float or numeric string, and RFC 3339 strings. Values that do not fit in an
// int64 are rejected.
func ParseTimestamp(v any) (time.Time, bool) {
	switch ts := v.(type) {
	case time.Time:
		return ts, !ts.IsZero()
	case *time.Time:
		if ts == nil || ts.IsZero() {
			return time.Time{}, false
		}
		return *ts, true
	case UnixMicros:
		return time.UnixMicro(int64(ts)), true
	case int64:
		return time.UnixMilli(ts), true
	case int:
		return time.UnixMilli(int64(ts)), true
	case uint64:
		if ts > math.MaxInt64 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ts)), true
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
		if math.IsNaN(ts) || ts < math.MinInt64 || ts >= math.MaxInt64 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ts)), true
	case string:
		s := strings.TrimSpace(ts)
		if s == "" {
			return time.Time{}, false
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms), true
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
