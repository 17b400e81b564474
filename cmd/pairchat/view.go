package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/GetStream/pairchat/chat"
	"github.com/GetStream/pairchat/onboarding"
)

// terminalView redraws the conversation whenever the screen state or the
// message list changes. Compose edits are not echoed; the terminal already
// shows what is typed.
type terminalView struct {
	out io.Writer
	uid string
	loc *time.Location

	mu   sync.Mutex
	last string
}

func (v *terminalView) Render(vs chat.ViewState) {
	var b strings.Builder
	switch vs.State {
	case chat.StateInitializing:
		b.WriteString("Loading your profile...\n")
	case chat.StateAwaitingPairCode:
		b.WriteString("You are not paired yet. Type /pair CODE to join a conversation.\n")
	case chat.StateSubscribed:
		fmt.Fprintf(&b, "── pair %s ──\n", vs.PairCode)
		switch vs.Body() {
		case chat.BodyLoading:
			b.WriteString("Loading messages...\n")
		case chat.BodyEmpty:
			fmt.Fprintf(&b, "%s\n%s\n", chat.EmptyTitle, chat.EmptyText)
		case chat.BodyMessages:
			for _, bubble := range chat.Bubbles(vs.Messages, v.uid, v.loc) {
				indent := ""
				if bubble.Mine {
					indent = "\t\t"
				}
				fmt.Fprintf(&b, "%s%s\n%s  %s • %s\n", indent, bubble.Text, indent, bubble.Label, bubble.Time)
			}
		}
	default:
		return
	}

	frame := b.String()
	v.mu.Lock()
	defer v.mu.Unlock()
	if frame == v.last {
		return
	}
	v.last = frame
	fmt.Fprint(v.out, "\033[H\033[2J", frame)
}

// ScrollToEnd is a no-op: every frame is drawn from the top and ends with the
// newest message.
func (v *terminalView) ScrollToEnd() {}

type terminalAlerter struct {
	out io.Writer
}

func (a terminalAlerter) Alert(title, message string) {
	fmt.Fprintf(a.out, "[%s] %s\n", title, message)
}

// navigator records where the welcome screen sent the user.
type navigator struct {
	screen string
	params map[string]any
}

func (n *navigator) Replace(screenID string, params map[string]any) {
	n.screen = screenID
	n.params = params
}

func (n *navigator) username() string {
	name, _ := n.params[onboarding.ParamUsername].(string)
	return name
}

type staticAuth struct {
	uid string
}

func (a staticAuth) CurrentUser() *chat.Identity {
	if a.uid == "" {
		return nil
	}
	return &chat.Identity{UID: a.uid}
}
