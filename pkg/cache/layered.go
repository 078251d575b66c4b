package cache

import (
	"context"
	"time"
)

// LayeredCache fronts a shared cache (normally Redis) with a small
// in-process layer. Reads are served from L1 when possible; L1 entries
// carry their own short TTL so cross-instance invalidation lag is bounded.
type LayeredCache struct {
	l1    *MemoryCache
	l2    Service
	l1TTL time.Duration
}

type LayeredOption func(*LayeredCache)

func WithL1MaxEntries(n int) LayeredOption {
	return func(l *LayeredCache) { l.l1 = NewMemoryCache(WithMaxEntries(n)) }
}

func WithL1TTL(ttl time.Duration) LayeredOption {
	return func(l *LayeredCache) { l.l1TTL = ttl }
}

func NewLayeredCache(l2 Service, opts ...LayeredOption) *LayeredCache {
	l := &LayeredCache{
		l1:    NewMemoryCache(),
		l2:    l2,
		l1TTL: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := l.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := l.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	_ = l.l1.Set(ctx, key, value, l1TTL)
	return nil
}

func (l *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := l.l1.Get(ctx, key, dest); err == nil {
		return nil
	}
	var raw []byte
	if err := l.l2.Get(ctx, key, &raw); err != nil {
		return err
	}
	_ = l.l1.Set(ctx, key, raw, l.l1TTL)
	return decode(raw, dest)
}

func (l *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = l.l1.Delete(ctx, keys...)
	return l.l2.Delete(ctx, keys...)
}

func (l *LayeredCache) Exists(ctx context.Context, key string) (bool, error) {
	if ok, _ := l.l1.Exists(ctx, key); ok {
		return true, nil
	}
	return l.l2.Exists(ctx, key)
}

func (l *LayeredCache) Close() error {
	_ = l.l1.Close()
	return l.l2.Close()
}

var _ Service = (*LayeredCache)(nil)
