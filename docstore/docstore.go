package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/GetStream/pairchat/chat"
	"github.com/GetStream/pairchat/metrics"
)

// A DB provides a storage layer that persists users and messages.
type DB interface {
	GetUser(ctx context.Context, uid string) (chat.User, error)
	ListMessages(ctx context.Context, pairCode string, excludeMsgIDs ...string) ([]chat.Document, error)
	InsertMessage(ctx context.Context, pairCode string, msg chat.Message) (chat.Message, error)
}

// A Cache provides a storage layer that caches recent messages.
type Cache interface {
	ListMessages(ctx context.Context, pairCode string) ([]chat.Document, error)
	InsertMessage(ctx context.Context, pairCode string, msg chat.Message) error
}

// A Notifier fans out the ids of new messages to the subscribers of a pair.
type Notifier interface {
	Publish(ctx context.Context, pairCode, messageID string) error
	Subscribe(ctx context.Context, pairCode string) (<-chan string, func() error, error)
}

// Store is the document store behind the chat screen: profiles and messages
// live in DB, recent messages in Cache, and Notifier drives live snapshots.
type Store struct {
	Logger   *slog.Logger
	DB       DB
	Cache    Cache
	Notifier Notifier

	mu   sync.Mutex
	subs map[*subscription]struct{}
	wg   sync.WaitGroup
}

// New returns a Store.
func New(logger *slog.Logger, db DB, cache Cache, notifier Notifier) *Store {
	return &Store{
		Logger:   logger,
		DB:       db,
		Cache:    cache,
		Notifier: notifier,
	}
}

var _ chat.Store = (*Store)(nil)

// GetUser returns the profile of uid.
func (s *Store) GetUser(ctx context.Context, uid string) (chat.User, error) {
	u, err := s.DB.GetUser(ctx, uid)
	if err != nil {
		return chat.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// AddDocument writes a message to a pairs/{code}/messages collection and
// notifies the pair's subscribers. The text is stored trimmed, otherwise as
// given. A chat.ServerTimestamp timestamp, or none, is filled in by the
// database.
func (s *Store) AddDocument(ctx context.Context, collection string, data map[string]any) (string, error) {
	pairCode, err := parseMessagesPath(collection)
	if err != nil {
		return "", err
	}

	text, _ := data[chat.FieldText].(string)
	sender, _ := data[chat.FieldSender].(string)
	text = strings.TrimSpace(text)
	if text == "" || sender == "" {
		return "", fmt.Errorf("text and sender are required: %w", ErrInvalidDocument)
	}

	msg := chat.Message{Text: text, Sender: sender}
	if ts, ok := data[chat.FieldTimestamp]; ok && ts != nil && !chat.IsServerTimestamp(ts) {
		t, ok := chat.ParseTimestamp(ts)
		if !ok {
			return "", fmt.Errorf("timestamp %v: %w", ts, ErrInvalidDocument)
		}
		msg.Timestamp = t
	}

	stored, err := s.DB.InsertMessage(ctx, pairCode, msg)
	if err != nil {
		metrics.WriteFailures.WithLabelValues("db").Inc()
		return "", fmt.Errorf("insert message: %w", err)
	}
	metrics.MessagesWritten.Inc()

	if err := s.Cache.InsertMessage(ctx, pairCode, stored); err != nil {
		metrics.WriteFailures.WithLabelValues("cache").Inc()
		s.Logger.Error("Could not cache message", "pair_code", pairCode, "error", err.Error())
	}
	if err := s.Notifier.Publish(ctx, pairCode, stored.ID); err != nil {
		metrics.WriteFailures.WithLabelValues("publish").Inc()
		s.Logger.Error("Could not publish message", "pair_code", pairCode, "error", err.Error())
	}

	return stored.ID, nil
}

// Snapshot returns every message of a pair ordered by timestamp, oldest
// first. Recent messages come from the cache and the rest from the database.
func (s *Store) Snapshot(ctx context.Context, pairCode string) (chat.Snapshot, error) {
	cached, err := s.Cache.ListMessages(ctx, pairCode)
	if err != nil {
		s.Logger.Warn("Could not list cached messages", "pair_code", pairCode, "error", err.Error())
		cached = nil
	}

	ids := make([]string, len(cached))
	for i, doc := range cached {
		ids[i] = doc.ID
	}

	docs, err := s.DB.ListMessages(ctx, pairCode, ids...)
	if err != nil {
		return chat.Snapshot{}, fmt.Errorf("list messages: %w", err)
	}

	docs = append(docs, cached...)
	sortDocuments(docs)
	return chat.Snapshot{Documents: docs}, nil
}

func sortDocuments(docs []chat.Document) {
	slices.SortStableFunc(docs, func(a, b chat.Document) int {
		ta, _ := chat.ParseTimestamp(a.Data[chat.FieldTimestamp])
		tb, _ := chat.ParseTimestamp(b.Data[chat.FieldTimestamp])
		if c := ta.Compare(tb); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// Subscribe calls fn with a snapshot of the pair right away and again after
// every published change, until the subscription is cancelled or ctx is done.
// A snapshot that cannot be built is logged and skipped, so the subscriber
// keeps the previous one.
func (s *Store) Subscribe(ctx context.Context, pairCode string, fn func(chat.Snapshot)) (chat.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	changes, closeFn, err := s.Notifier.Subscribe(ctx, pairCode)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	sub := &subscription{cancel: cancel}
	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[*subscription]struct{})
	}
	s.subs[sub] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	metrics.ActiveSubscriptions.Inc()
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.subs, sub)
			s.mu.Unlock()
		}()
		defer metrics.ActiveSubscriptions.Dec()
		defer func() {
			if err := closeFn(); err != nil {
				s.Logger.Warn("Could not close subscription", "pair_code", pairCode, "error", err.Error())
			}
		}()

		s.deliver(ctx, pairCode, fn)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				drain(changes)
				s.deliver(ctx, pairCode, fn)
			}
		}
	}()

	return sub, nil
}

// drain discards pending notifications; one snapshot covers all of them.
func drain(changes <-chan string) {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (s *Store) deliver(ctx context.Context, pairCode string, fn func(chat.Snapshot)) {
	snap, err := s.Snapshot(ctx, pairCode)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		metrics.SnapshotFailures.Inc()
		s.Logger.Error("Could not build snapshot", "pair_code", pairCode, "error", err.Error())
		return
	}
	fn(snap)
	metrics.SnapshotsDelivered.Inc()
}

// Close cancels every open subscription and waits until their goroutines
// have returned.
func (s *Store) Close() {
	s.mu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	s.wg.Wait()
}

type subscription struct {
	once   sync.Once
	cancel context.CancelFunc
}

// Cancel stops the delivery of snapshots. It does not wait for a snapshot
// being delivered to return.
func (sub *subscription) Cancel() {
	sub.once.Do(sub.cancel)
}
