package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// A View draws the chat screen. Render receives a private copy of the view
// state. Implementations must not call back into the Screen.
type View interface {
	Render(ViewState)
	ScrollToEnd()
}

// Screen is the chat screen view model. It resolves the pair code of the
// signed-in user, keeps one live subscription on the pair's messages and
// writes new messages to the store.
type Screen struct {
	auth   Auth
	store  Store
	view   View
	logger *slog.Logger
	loc    *time.Location

	mu        sync.Mutex
	vs        ViewState
	ctx       context.Context
	cancel    context.CancelFunc
	sub       Subscription
	gen       uint64
	lastCount int
	writes    sync.WaitGroup
}

// An Option configures a Screen.
type Option func(*Screen)

// WithLogger sets the logger used for swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Screen) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocation sets the zone bubble times are shown in.
func WithLocation(loc *time.Location) Option {
	return func(s *Screen) {
		s.loc = loc
	}
}

// NewScreen returns an unmounted chat screen.
func NewScreen(auth Auth, store Store, view View, opts ...Option) *Screen {
	s := &Screen{
		auth:   auth,
		store:  store,
		view:   view,
		logger: slog.Default(),
		vs:     ViewState{State: StateIdle, Loading: true},
	}
	if s.view == nil {
		s.view = nopView{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mount starts the screen. The pair code of the signed-in user is read once
// in the background; ctx bounds the lifetime of everything the screen starts.
func (s *Screen) Mount(ctx context.Context) {
	s.mu.Lock()
	if s.vs.State != StateIdle {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	ctx = s.ctx
	s.vs.State = StateInitializing
	s.renderLocked()
	s.mu.Unlock()

	id := s.auth.CurrentUser()
	if id == nil || id.UID == "" {
		s.logger.Info("No signed-in user, waiting for a pair code")
		s.awaitPairCode(ctx)
		return
	}
	go s.loadPairCode(ctx, id.UID)
}

func (s *Screen) loadPairCode(ctx context.Context, uid string) {
	user, err := s.store.GetUser(ctx, uid)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.Warn("Could not read user profile", "uid", uid, "error", err.Error())
		s.awaitPairCode(ctx)
		return
	}
	if user.PairCode == "" {
		s.logger.Info("User has no pair code", "uid", uid)
		s.awaitPairCode(ctx)
		return
	}
	s.switchPair(user.PairCode, true)
}

func (s *Screen) awaitPairCode(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || s.vs.State != StateInitializing {
		return
	}
	s.vs.State = StateAwaitingPairCode
	s.renderLocked()
}

// SetPairCode points the screen at another pair. The active subscription, if
// any, is cancelled before the new one is opened. An empty code leaves the
// screen waiting for a pair code.
func (s *Screen) SetPairCode(code string) {
	s.switchPair(code, false)
}

func (s *Screen) switchPair(code string, fromProfile bool) {
	s.mu.Lock()
	if s.ctx == nil || s.ctx.Err() != nil || s.vs.State == StateUnmounted {
		s.mu.Unlock()
		return
	}
	if fromProfile && s.vs.State != StateInitializing {
		s.mu.Unlock()
		return
	}
	if code == s.vs.PairCode && s.vs.State == StateSubscribed {
		s.mu.Unlock()
		return
	}

	old := s.sub
	s.sub = nil
	s.gen++
	gen := s.gen
	ctx := s.ctx

	s.vs.PairCode = code
	s.vs.Messages = nil
	s.vs.Loading = true
	if code == "" {
		s.vs.State = StateAwaitingPairCode
	} else {
		s.vs.State = StateSubscribed
	}
	s.renderLocked()
	s.mu.Unlock()

	if old != nil {
		old.Cancel()
	}
	if code == "" {
		return
	}

	sub, err := s.store.Subscribe(ctx, code, func(snap Snapshot) {
		s.applySnapshot(gen, snap)
	})
	if err != nil {
		s.logger.Error("Could not subscribe to messages", "pair_code", code, "error", err.Error())
		return
	}

	s.mu.Lock()
	stale := gen != s.gen || s.vs.State == StateUnmounted
	if !stale {
		s.sub = sub
	}
	s.mu.Unlock()
	if stale {
		sub.Cancel()
	}
}

func (s *Screen) applySnapshot(gen uint64, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.vs.State != StateSubscribed {
		return
	}
	s.vs = ApplySnapshot(s.vs, snap)
	if !s.renderLocked() {
		s.view.ScrollToEnd()
	}
}

// Unmount tears the screen down. The subscription is cancelled and a profile
// read still in flight is discarded when it completes.
func (s *Screen) Unmount() {
	s.mu.Lock()
	if s.vs.State == StateUnmounted {
		s.mu.Unlock()
		return
	}
	s.vs.State = StateUnmounted
	if s.cancel != nil {
		s.cancel()
	}
	sub := s.sub
	s.sub = nil
	s.gen++
	s.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

// SetCompose replaces the content of the input field.
func (s *Screen) SetCompose(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vs.State == StateUnmounted {
		return
	}
	s.vs.Compose = text
	s.renderLocked()
}

// Send writes the trimmed compose text to the pair's messages and clears the
// input field without waiting for the write. Nothing happens when the text is
// blank, the pair code is unknown or nobody is signed in. The message shows up
// once the subscription delivers it; write failures are only logged.
func (s *Screen) Send(ctx context.Context) {
	s.mu.Lock()
	text := strings.TrimSpace(s.vs.Compose)
	code := s.vs.PairCode
	id := s.auth.CurrentUser()
	if s.vs.State == StateUnmounted || text == "" || code == "" || id == nil || id.UID == "" {
		s.mu.Unlock()
		return
	}
	s.vs.Compose = ""
	s.renderLocked()
	s.writes.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.writes.Done()
		msgID, err := s.store.AddDocument(ctx, MessagesPath(code), map[string]any{
			FieldText:      text,
			FieldSender:    id.UID,
			FieldTimestamp: ServerTimestamp,
		})
		if err != nil {
			s.logger.Warn("Could not send message", "pair_code", code, "error", err.Error())
			return
		}
		s.logger.Debug("Message sent", "pair_code", code, "id", msgID)
	}()
}

// Wait blocks until every write started by Send has completed.
func (s *Screen) Wait() {
	s.writes.Wait()
}

// State returns a copy of the current view state.
func (s *Screen) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vs.clone()
}

// Bubbles renders the current messages for the signed-in user.
func (s *Screen) Bubbles() []Bubble {
	var uid string
	if id := s.auth.CurrentUser(); id != nil {
		uid = id.UID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Bubbles(s.vs.Messages, uid, s.loc)
}

// renderLocked hands the state to the view and scrolls to the end when the
// number of rendered messages changed. It reports whether it scrolled.
func (s *Screen) renderLocked() bool {
	s.view.Render(s.vs.clone())
	count := 0
	if s.vs.Body() == BodyMessages {
		count = len(s.vs.Messages)
	}
	if count == s.lastCount {
		return false
	}
	s.lastCount = count
	if count == 0 {
		return false
	}
	s.view.ScrollToEnd()
	return true
}

type nopView struct{}

func (nopView) Render(ViewState) {}
func (nopView) ScrollToEnd()     {}
