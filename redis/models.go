package redis

import (
	"github.com/GetStream/pairchat/chat"
)

// A message represents a cached message. The timestamp is kept as unix
// microseconds, the precision Postgres stores.
type message struct {
	ID        string `redis:"id"`
	Text      string `redis:"text"`
	Sender    string `redis:"sender"`
	Timestamp int64  `redis:"timestamp"`
}

// Document returns the cached message as a snapshot document. The timestamp
// stays raw, typed as chat.UnixMicros.
func (m message) Document() chat.Document {
	return chat.Document{
		ID: m.ID,
		Data: map[string]any{
			chat.FieldText:      m.Text,
			chat.FieldSender:    m.Sender,
			chat.FieldTimestamp: chat.UnixMicros(m.Timestamp),
		},
	}
}
