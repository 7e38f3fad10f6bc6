package kv

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

var _ Store = (*MemoryStore)(nil)

// sweepInterval is how often Put drops expired items.
const sweepInterval = time.Minute

// MemoryStore keeps values in process memory. Reads ignore expired items and
// writes sweep them out at most once per sweepInterval.
// Suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	items     map[string]memoryItem
	nowTime   func() time.Time
	lastSweep time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithNowTime sets the clock used for expiry checks (primarily for testing)
func WithNowTime(nowFunc func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		m.nowTime = nowFunc
	}
}

func NewMemoryStore(options ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		items:   make(map[string]memoryItem),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *MemoryStore) expired(item memoryItem) bool {
	return !item.expiresAt.IsZero() && !m.nowTime().Before(item.expiresAt)
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok || m.expired(item) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), item.value...), nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowTime()
	if now.Sub(m.lastSweep) >= sweepInterval {
		for k, it := range m.items {
			if m.expired(it) {
				delete(m.items, k)
			}
		}
		m.lastSweep = now
	}

	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiresAt = now.Add(ttl)
	}
	m.items[key] = item
	return nil
}

// Len is the number of items held, including expired ones not yet swept.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

func (m *MemoryStore) Take(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.items, key)
	if m.expired(item) {
		return nil, ErrNotFound
	}
	return item.value, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
