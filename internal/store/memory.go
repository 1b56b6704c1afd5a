package store

import (
	"sync"
)

const subscriberBuffer = 16

// MemoryStore is an in-memory implementation of [Store].
//
// Each Update replaces the previous record; no history is kept. Subscribers
// receive updates via buffered channels. Updates are sent non-blocking; if a
// subscriber's buffer is full, the update is dropped for that subscriber.
type MemoryStore struct {
	mu     sync.RWMutex
	latest PollRecord
	has    bool

	subscribers map[chan PollRecord]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[chan PollRecord]struct{}),
	}
}

// Update stores a [PollRecord] as the latest and notifies all subscribers.
func (m *MemoryStore) Update(record PollRecord) {
	m.mu.Lock()
	m.latest = record
	m.has = true
	m.mu.Unlock()

	m.notifySubscribers(record)
}

// Latest returns the most recently stored record.
func (m *MemoryStore) Latest() (PollRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.has
}

// Subscribe creates a new subscription and returns a channel for receiving updates.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan PollRecord {
	ch := make(chan PollRecord, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan PollRecord) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the record to all active subscribers without blocking.
func (m *MemoryStore) notifySubscribers(record PollRecord) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- record:
		default:
			// subscriber is slow, drop the message
		}
	}
}
