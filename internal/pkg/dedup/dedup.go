// Package dedup remembers keys for a while so repeated events are handled once.
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is used when a non-positive TTL is given.
const DefaultTTL = 10 * time.Minute

// Deduper reports whether a key was already seen within its TTL. The
// first call for a key records it and returns false.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	// Forget drops key so the next Seen reports it as new.
	Forget(ctx context.Context, key string) error
}

type redisDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis stores keys as prefix:key with SETNX.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) Deduper {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisDeduper{client: client, prefix: prefix, ttl: ttl}
}

func (d *redisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+":"+key, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => already exists => duplicate
	return !ok, nil
}

func (d *redisDeduper) Forget(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.prefix+":"+key).Err()
}

type memoryDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
	now    func() time.Time
}

// NewMemory keeps keys in process memory.
func NewMemory(ttl time.Duration) Deduper {
	return newMemory(ttl, time.Now)
}

func newMemory(ttl time.Duration, now func() time.Time) *memoryDeduper {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now().Add(ttl),
		now:    now,
	}
}

func (d *memoryDeduper) Seen(_ context.Context, key string) (bool, error) {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[key]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[key] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for k, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, k)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

func (d *memoryDeduper) Forget(_ context.Context, key string) error {
	d.mu.Lock()
	delete(d.seen, key)
	d.mu.Unlock()
	return nil
}

// New returns a Redis deduper when client answers a ping, else an in-memory
// one. The ping error is returned alongside the fallback.
func New(ctx context.Context, client *redis.Client, prefix string, ttl time.Duration) (Deduper, error) {
	if client == nil {
		return NewMemory(ttl), nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return NewMemory(ttl), err
	}
	return NewRedis(client, prefix, ttl), nil
}
