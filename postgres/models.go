package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/GetStream/pairchat/chat"
)

// A user represents a user profile in the database.
type user struct {
	bun.BaseModel `bun:"table:users"`

	UID      string `bun:"uid,pk"`
	PairCode string `bun:"pair_code,nullzero"`
}

// A message represents a message in the database.
type message struct {
	bun.BaseModel `bun:"table:messages"`

	ID        string    `bun:",pk,type:uuid,default:gen_random_uuid()"`
	PairCode  string    `bun:"pair_code,notnull"`
	Text      string    `bun:"text,notnull"`
	Sender    string    `bun:"sender,notnull"`
	Timestamp time.Time `bun:"timestamp,nullzero,notnull,default:current_timestamp"`
}

func (u user) ChatUser() chat.User {
	return chat.User{
		UID:      u.UID,
		PairCode: u.PairCode,
	}
}

func (m message) ChatMessage() chat.Message {
	return chat.Message{
		ID:        m.ID,
		Text:      m.Text,
		Sender:    m.Sender,
		Timestamp: m.Timestamp,
	}
}

// Document returns the message as a snapshot document. The timestamp keeps
// its native time.Time type.
func (m message) Document() chat.Document {
	return chat.Document{
		ID: m.ID,
		Data: map[string]any{
			chat.FieldText:      m.Text,
			chat.FieldSender:    m.Sender,
			chat.FieldTimestamp: m.Timestamp,
		},
	}
}
