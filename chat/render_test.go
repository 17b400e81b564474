package chat

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 1, 1, 21, 5, 42, 0, time.UTC)
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"Time", ts, "21:05"},
		{"TimePointer", &ts, "21:05"},
		{"Millis", ts.UnixMilli(), "21:05"},
		{"Int", int(ts.UnixMilli()), "21:05"},
		{"Float", float64(ts.UnixMilli()), "21:05"},
		{"Uint", uint64(ts.UnixMilli()), "21:05"},
		{"Micros", UnixMicros(ts.UnixMicro()), "21:05"},
		{"UintOverflow", uint64(math.MaxInt64) + 1, ""},
		{"NaN", math.NaN(), ""},
		{"PosInf", math.Inf(1), ""},
		{"NegInf", math.Inf(-1), ""},
		{"FloatOverflow", 1e19, ""},
		{"NumericString", "1704143142000", "21:05"},
		{"RFC3339", "2024-01-01T21:05:42Z", "21:05"},
		{"Nil", nil, ""},
		{"NilPointer", (*time.Time)(nil), ""},
		{"ZeroTime", time.Time{}, ""},
		{"Garbage", "yesterday", ""},
		{"Bool", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTime(tt.value, time.UTC); got != tt.want {
				t.Errorf("FormatTime(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp_MicrosOrder(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older, ok := ParseTimestamp(UnixMicros(base.Add(500 * time.Microsecond).UnixMicro()))
	if !ok {
		t.Fatal("ParseTimestamp() rejected micros")
	}
	newer, _ := ParseTimestamp(base.Add(700 * time.Microsecond))
	if !older.Before(newer) {
		t.Errorf("Got %v not before %v", older, newer)
	}
}

func TestFormatTime_Location(t *testing.T) {
	ts := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)
	if got := FormatTime(ts, tokyo); got != "08:30" {
		t.Errorf("FormatTime() = %q, want 08:30", got)
	}
}

func TestMessageFromDocument(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		doc  Document
		want Message
	}{
		{
			name: "Complete",
			doc:  Document{ID: "1", Data: map[string]any{"text": "Hello", "sender": "u1", "timestamp": ts}},
			want: Message{ID: "1", Text: "Hello", Sender: "u1", Timestamp: ts},
		},
		{
			name: "PendingTimestamp",
			doc:  Document{ID: "2", Data: map[string]any{"text": "Hello", "sender": "u1", "timestamp": ServerTimestamp}},
			want: Message{ID: "2", Text: "Hello", Sender: "u1"},
		},
		{
			name: "MistypedFields",
			doc:  Document{ID: "3", Data: map[string]any{"text": 42, "sender": nil}},
			want: Message{ID: "3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, MessageFromDocument(tt.doc)); diff != "" {
				t.Errorf("MessageFromDocument() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBubbles(t *testing.T) {
	ts := time.Date(2024, 1, 1, 7, 3, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "1", Text: "Hi", Sender: "me", Timestamp: ts},
		{ID: "2", Text: "Hey", Sender: "partner", Timestamp: ts.Add(time.Hour)},
		{ID: "3", Text: "No time", Sender: "me"},
	}
	want := []Bubble{
		{ID: "1", Text: "Hi", Time: "07:03", Label: "You", Mine: true},
		{ID: "2", Text: "Hey", Time: "08:03", Label: "Partner"},
		{ID: "3", Text: "No time", Label: "You", Mine: true},
	}
	if diff := cmp.Diff(want, Bubbles(msgs, "me", time.UTC)); diff != "" {
		t.Errorf("Bubbles() mismatch (-want +got):\n%s", diff)
	}
}

func TestPaths(t *testing.T) {
	if got := UserPath("u1"); got != "users/u1" {
		t.Errorf("UserPath() = %q", got)
	}
	if got := MessagesPath("ABC123"); got != "pairs/ABC123/messages" {
		t.Errorf("MessagesPath() = %q", got)
	}
}
