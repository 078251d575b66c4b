package cache

import (
	"sync"
	"time"
)

// Clock abstracts wall time so TTL expiry is testable without real waits.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// DefaultTTL is how long a computed result stays valid.
const DefaultTTL = 10 * time.Minute

// DefaultSweepInterval is how often expired entries are removed.
const DefaultSweepInterval = time.Minute

type entry struct {
	v   any
	exp time.Time
}

// ResultCache memoizes calculation results by digest key with a fixed TTL.
// Expired entries are dropped lazily on Get and in bulk by the sweeper.
// Safe for concurrent use.
type ResultCache struct {
	mu    sync.RWMutex
	m     map[string]entry
	ttl   time.Duration
	clock Clock

	sweepEvery time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// Option configures a ResultCache.
type Option func(*ResultCache)

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *ResultCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects a fake clock for tests.
func WithClock(clock Clock) Option {
	return func(c *ResultCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithSweepInterval overrides the sweep cadence.
func WithSweepInterval(d time.Duration) Option {
	return func(c *ResultCache) {
		if d > 0 {
			c.sweepEvery = d
		}
	}
}

// NewResultCache creates a cache. The sweeper does not run until Start.
func NewResultCache(opts ...Option) *ResultCache {
	c := &ResultCache{
		m:          make(map[string]entry),
		ttl:        DefaultTTL,
		clock:      SystemClock{},
		sweepEvery: DefaultSweepInterval,
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key if present and not expired.
func (c *ResultCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.exp) {
		c.mu.Lock()
		// a concurrent Set may have refreshed the entry since the read
		if cur, ok := c.m[key]; ok && c.clock.Now().After(cur.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

// Set stores v under key with the cache TTL.
func (c *ResultCache) Set(key string, v any) {
	exp := c.clock.Now().Add(c.ttl)
	c.mu.Lock()
	c.m[key] = entry{v: v, exp: exp}
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Sweep removes all expired entries and returns how many were dropped.
func (c *ResultCache) Sweep() int {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			dropped++
		}
	}
	return dropped
}

// Start launches the background sweeper. Call Stop on shutdown.
func (c *ResultCache) Start() {
	go func() {
		ticker := time.NewTicker(c.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-c.stopCh:
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// Stop terminates the sweeper. Idempotent.
func (c *ResultCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
