package prefstore

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore keeps everything in process memory. It is the default backend
// and the one used by tests. Changes are published while the lock is held so
// subscribers observe writes in commit order.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
	feed *Feed
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string][]byte),
		feed: NewFeed(),
	}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, namespace, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.data[namespace][key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(value), nil
}

// Set implements Store.
func (m *MemoryStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	if value == nil {
		value = []byte("null")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(namespace, key, value)
	m.publish(ctx, namespace, key, value)
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, existed := m.data[namespace][key]; existed {
		delete(m.data[namespace], key)
		m.publish(ctx, namespace, key, nil)
	}
	return nil
}

// Update implements Store. The whole store is locked while fn runs.
func (m *MemoryStore) Update(ctx context.Context, namespace, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.data[namespace][key]
	next, write, err := applyUpdate(fn, bytes.Clone(current), exists)
	if err != nil || !write {
		return err
	}

	if next == nil {
		delete(m.data[namespace], key)
	} else {
		m.put(namespace, key, next)
	}

	m.publish(ctx, namespace, key, next)
	return nil
}

// Feed implements Store.
func (m *MemoryStore) Feed() *Feed {
	return m.feed
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) put(namespace, key string, value []byte) {
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		m.data[namespace] = ns
	}
	ns[key] = bytes.Clone(value)
}

func (m *MemoryStore) publish(ctx context.Context, namespace, key string, value []byte) {
	m.feed.Publish(Change{
		Namespace: namespace,
		Key:       key,
		Value:     bytes.Clone(value),
		Origin:    OriginFrom(ctx),
	})
}
