package gate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/logging"
)

// EventKind names a change to a user's authorization state.
type EventKind string

const (
	// EventSessionRevoked: one session was logged out.
	EventSessionRevoked EventKind = "session_revoked"
	// EventSessionsRevoked: every session of the user was revoked.
	EventSessionsRevoked EventKind = "sessions_revoked"
	// EventRoleChanged: the user's profile role changed.
	EventRoleChanged EventKind = "role_changed"
)

// Event is published whenever something that feeds Evaluate changes.
type Event struct {
	Kind   EventKind
	UserID string
	// Role is the new role for EventRoleChanged.
	Role Role
	At   time.Time
}

// Publisher is the write side of the event channel.
type Publisher interface {
	Publish(ev Event)
}

// NopPublisher drops events.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(Event) {}

type subscription struct {
	userID string
	ch     chan Event
}

// Broker fans events out to per-user subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event and is expected to
// re-evaluate on its own schedule.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	buffer int
	logger *slog.Logger
}

// NewBroker creates a broker with the given per-subscriber buffer.
func NewBroker(buffer int, logger *slog.Logger) *Broker {
	if buffer <= 0 {
		buffer = 8
	}
	return &Broker{
		subs:   make(map[uint64]*subscription),
		buffer: buffer,
		logger: logging.Resolve(logger),
	}
}

// Publish delivers ev to every subscriber for ev.UserID.
func (b *Broker) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, sub := range b.subs {
		if sub.userID != ev.UserID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.logger.Warn("dropping auth event for slow subscriber",
				"subscription", id, "user_id", ev.UserID, "kind", ev.Kind)
		}
	}
}

// Subscribe returns a channel of events for userID. The channel is closed
// once ctx is done.
func (b *Broker) Subscribe(ctx context.Context, userID string) <-chan Event {
	sub := &subscription{userID: userID, ch: make(chan Event, b.buffer)}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(sub.ch)
		b.mu.Unlock()
	}()
	return sub.ch
}

// Subscribers returns the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
