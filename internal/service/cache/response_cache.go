package cache

import (
	"context"
	"errors"
	"time"

	pkgcache "VoltMetrics/pkg/cache"
)

// BytesCache is a minimal cache API storing raw bytes with TTL. The API
// handlers use it to cache serialized responses.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}

// ResponseCache adapts a pkg/cache Service (Redis or layered memory+Redis)
// to the BytesCache API.
type ResponseCache struct {
	svc pkgcache.Service
}

func NewResponseCache(svc pkgcache.Service) *ResponseCache {
	return &ResponseCache{svc: svc}
}

func (r *ResponseCache) GetBytes(key string) ([]byte, bool, error) {
	var s string
	err := r.svc.Get(context.Background(), key, &s)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(s), true, nil
}

func (r *ResponseCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	return r.svc.Set(context.Background(), key, string(value), ttl)
}

var _ BytesCache = (*ResponseCache)(nil)
