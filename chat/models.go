package chat

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by a Store when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// Field names of a message document.
const (
	FieldText      = "text"
	FieldSender    = "sender"
	FieldTimestamp = "timestamp"
)

// A User is the profile document stored under users/{uid}. An empty PairCode
// means the user has not been paired yet.
type User struct {
	UID      string `json:"uid"`
	PairCode string `json:"pair_code"`
}

// An Identity is the signed-in user as reported by the auth provider.
type Identity struct {
	UID string
}

// Auth exposes the currently signed-in user. It returns nil when nobody is
// signed in.
type Auth interface {
	CurrentUser() *Identity
}

// A Document is a single entry of a snapshot: the backend id plus the raw
// field values as the backend stored them.
type Document struct {
	ID   string
	Data map[string]any
}

// A Snapshot is the complete, ordered content of a subscribed collection at
// the time it was delivered.
type Snapshot struct {
	Documents []Document
}

// A Message is the view-side projection of a message document.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// A Subscription delivers snapshots until it is cancelled.
type Subscription interface {
	Cancel()
}

// A Store is the document store backing the chat screen.
type Store interface {
	// GetUser reads users/{uid} once. It returns ErrNotFound when the
	// profile does not exist.
	GetUser(ctx context.Context, uid string) (User, error)
	// Subscribe delivers the messages of the pair ordered by timestamp
	// ascending: once right away and again after every change.
	Subscribe(ctx context.Context, pairCode string, fn func(Snapshot)) (Subscription, error)
	// AddDocument appends a document to the collection and returns its id.
	AddDocument(ctx context.Context, collection string, data map[string]any) (string, error)
}

type serverTimestamp struct{}

func (serverTimestamp) String() string { return "ServerTimestamp" }

// ServerTimestamp is a field value asking the backend to fill in its own
// clock when the document is written.
var ServerTimestamp any = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// UserPath returns the document path of a user profile.
func UserPath(uid string) string {
	return fmt.Sprintf("users/%s", uid)
}

// MessagesPath returns the collection path holding the messages of a pair.
func MessagesPath(pairCode string) string {
	return fmt.Sprintf("pairs/%s/messages", pairCode)
}

// MessageFromDocument maps a snapshot document to a Message. Missing or
// mistyped fields are left at their zero value.
func MessageFromDocument(doc Document) Message {
	msg := Message{ID: doc.ID}
	if s, ok := doc.Data[FieldText].(string); ok {
		msg.Text = s
	}
	if s, ok := doc.Data[FieldSender].(string); ok {
		msg.Sender = s
	}
	if ts, ok := ParseTimestamp(doc.Data[FieldTimestamp]); ok {
		msg.Timestamp = ts
	}
	return msg
}
