package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindInfo    NotificationKind = "info"
)

// NotificationTTL is how long a notification stays in a session feed.
const NotificationTTL = 5 * time.Second

// Notification is a one-way, user-facing message.
type Notification struct {
	ID        string           `json:"id"`
	Session   string           `json:"-"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	CreatedAt time.Time        `json:"createdAt"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Notifiers fans a notification out to every member.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, n Notification) {
	for _, x := range ns {
		x.Notify(ctx, n)
	}
}

type LogNotifier struct {
	Log *zap.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) {
	l.Log.Info("notification",
		zap.String("session", n.Session),
		zap.String("kind", string(n.Kind)),
		zap.String("message", n.Message),
	)
}

// Feed keeps recent notifications per session until they expire or are
// dismissed.
type Feed struct {
	clock Clock
	ttl   time.Duration

	mu    sync.Mutex
	items map[string][]Notification
}

func NewFeed(clock Clock, ttl time.Duration) *Feed {
	return &Feed{clock: clock, ttl: ttl, items: make(map[string][]Notification)}
}

func (f *Feed) Notify(_ context.Context, n Notification) {
	if n.Session == "" {
		return
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = f.clock.Now()
	}
	f.mu.Lock()
	f.items[n.Session] = append(f.prune(n.Session), n)
	f.mu.Unlock()
}

// List returns the session's live notifications, oldest first.
func (f *Feed) List(session string) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	live := f.prune(session)
	out := make([]Notification, len(live))
	copy(out, live)
	return out
}

func (f *Feed) Dismiss(session, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	live := f.prune(session)
	kept := live[:0]
	for _, n := range live {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	f.store(session, kept)
}

// prune drops expired entries for session. f.mu must be held.
func (f *Feed) prune(session string) []Notification {
	now := f.clock.Now()
	all := f.items[session]
	live := all[:0]
	for _, n := range all {
		if now.Sub(n.CreatedAt) < f.ttl {
			live = append(live, n)
		}
	}
	f.store(session, live)
	return live
}

func (f *Feed) store(session string, list []Notification) {
	if len(list) == 0 {
		delete(f.items, session)
		return
	}
	f.items[session] = list
}

func notify(ctx context.Context, n Notifier, session, msg string, kind NotificationKind) {
	if n == nil {
		return
	}
	n.Notify(ctx, Notification{Session: session, Message: msg, Kind: kind})
}
