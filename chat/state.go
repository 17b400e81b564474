package chat

import "strings"

// State is the lifecycle stage of a chat screen.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateAwaitingPairCode
	StateSubscribed
	StateUnmounted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateAwaitingPairCode:
		return "awaiting_pair_code"
	case StateSubscribed:
		return "subscribed"
	case StateUnmounted:
		return "unmounted"
	}
	return "unknown"
}

// Body tells a view what to draw in the message area.
type Body int

const (
	BodyLoading Body = iota
	BodyEmpty
	BodyMessages
)

// ViewState is everything a view needs to draw the chat screen. It is a
// projection of the subscribed collection and is rebuilt from snapshots.
type ViewState struct {
	State    State
	Messages []Message
	PairCode string
	Compose  string
	Loading  bool
}

// Body returns which of the progress indicator, the empty placeholder or the
// message list should be shown.
func (v ViewState) Body() Body {
	switch {
	case v.Loading:
		return BodyLoading
	case len(v.Messages) == 0:
		return BodyEmpty
	default:
		return BodyMessages
	}
}

// CanCompose reports whether the input field is editable.
func (v ViewState) CanCompose() bool {
	return v.PairCode != ""
}

// CanSend reports whether the send button is enabled.
func (v ViewState) CanSend() bool {
	return v.PairCode != "" && strings.TrimSpace(v.Compose) != ""
}

// ApplySnapshot returns prior with its messages replaced by the content of
// snap. The result never shares the messages slice with prior.
func ApplySnapshot(prior ViewState, snap Snapshot) ViewState {
	next := prior
	next.Messages = make([]Message, len(snap.Documents))
	for i, doc := range snap.Documents {
		next.Messages[i] = MessageFromDocument(doc)
	}
	next.Loading = false
	return next
}

func (v ViewState) clone() ViewState {
	out := v
	if v.Messages != nil {
		out.Messages = make([]Message, len(v.Messages))
		copy(out.Messages, v.Messages)
	}
	return out
}
