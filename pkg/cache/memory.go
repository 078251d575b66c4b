package cache

import (
	"context"
	"sync"
	"time"
)

const defaultMemoryTTL = 24 * time.Hour

type memEntry struct {
	data      []byte
	expiresAt time.Time
	lastUsed  time.Time
}

// MemoryCache is an in-process cache with TTL expiry and least-recently-used
// eviction once maxEntries is reached. Values are stored in encoded form so
// callers cannot mutate cached data through shared references.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*memEntry
	maxEntries int
	stop       chan struct{}
	stopOnce   sync.Once
}

type MemoryOption func(*MemoryCache)

func WithMaxEntries(n int) MemoryOption {
	return func(m *MemoryCache) { m.maxEntries = n }
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	m := &MemoryCache{
		entries:    make(map[string]*memEntry),
		maxEntries: 1000,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.janitor(5 * time.Minute)
	return m
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok && len(m.entries) >= m.maxEntries {
		m.evictOldest()
	}
	m.entries[key] = &memEntry{data: data, expiresAt: now.Add(ttl), lastUsed: now}
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		return ErrCacheMiss
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		m.mu.Unlock()
		return ErrCacheMiss
	}
	e.lastUsed = time.Now()
	data := e.data
	m.mu.Unlock()

	return decode(data, dest)
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return false, nil
	}
	return true, nil
}

// Close stops the janitor goroutine.
func (m *MemoryCache) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

// evictOldest removes the least recently used entry. Caller holds the lock.
func (m *MemoryCache) evictOldest() {
	var oldest string
	var oldestAt time.Time
	for key, e := range m.entries {
		if oldest == "" || e.lastUsed.Before(oldestAt) {
			oldest = key
			oldestAt = e.lastUsed
		}
	}
	if oldest != "" {
		delete(m.entries, oldest)
	}
}

func (m *MemoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, e := range m.entries {
				if now.After(e.expiresAt) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

var _ Service = (*MemoryCache)(nil)
