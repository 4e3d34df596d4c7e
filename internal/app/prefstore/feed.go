package prefstore

import (
	"encoding/json"
	"sync"

	"freequilt/internal/pkg/logx"
)

// Change describes one effective write. Value is nil for deletions.
type Change struct {
	Namespace string          `json:"namespace"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"newValue"`
	Origin    string          `json:"-"`
}

// Deleted reports whether the change removed the key.
func (c Change) Deleted() bool {
	return c.Value == nil
}

// DefaultSubscriptionBuffer is the channel capacity used when Subscribe gets a non-positive buffer.
const DefaultSubscriptionBuffer = 64

// Feed fans changes out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full misses the change.
type Feed struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[*Subscription]struct{})}
}

// Subscription receives the changes of selected namespaces.
type Subscription struct {
	feed       *Feed
	namespaces map[string]struct{}
	ch         chan Change
	once       sync.Once
}

// Subscribe registers a subscriber for the given namespaces, or for every
// namespace when none is given.
func (f *Feed) Subscribe(buffer int, namespaces ...string) *Subscription {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}

	sub := &Subscription{
		feed: f,
		ch:   make(chan Change, buffer),
	}

	if len(namespaces) > 0 {
		sub.namespaces = make(map[string]struct{}, len(namespaces))
		for _, ns := range namespaces {
			sub.namespaces[ns] = struct{}{}
		}
	}

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	return sub
}

// Publish delivers c to every matching subscriber without blocking.
func (f *Feed) Publish(c Change) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for sub := range f.subs {
		if !sub.matches(c.Namespace) {
			continue
		}

		select {
		case sub.ch <- c:
		default:
			logx.Warn("Preference change dropped, subscriber buffer full",
				"namespace", c.Namespace,
				"key", c.Key,
			)
		}
	}
}

// Len returns the number of live subscriptions.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

func (s *Subscription) matches(namespace string) bool {
	if s.namespaces == nil {
		return true
	}
	_, ok := s.namespaces[namespace]
	return ok
}

// C returns the channel changes are delivered on. It is closed by Close.
func (s *Subscription) C() <-chan Change {
	return s.ch
}

// Close unsubscribes and closes the channel. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s)
		s.feed.mu.Unlock()

		close(s.ch)
	})
}
