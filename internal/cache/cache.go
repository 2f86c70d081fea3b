// Package cache provides a small TTL cache for external provider responses,
// backed by Redis. Routing and geocoding answers for the same inputs rarely
// change within minutes, and the upstream providers rate-limit aggressively,
// so repeated lookups are served from here.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL is a get/set byte cache with per-entry expiry. A nil *TTL is valid and
// behaves as an always-miss cache, so callers never branch on whether Redis
// is configured.
type TTL struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a TTL cache over the given Redis client.
func New(client *redis.Client, ttl time.Duration) *TTL {
	return &TTL{client: client, ttl: ttl}
}

// Get returns the cached bytes for key and whether they were present.
// Errors degrade to a miss: a broken cache must never break a lookup.
func (c *TTL) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil (a plain miss) and real failures are the same to callers.
		return nil, false
	}
	return b, true
}

// Set stores val under key for the cache's TTL. Write failures are ignored
// for the same reason Get failures are.
func (c *TTL) Set(ctx context.Context, key string, val []byte) {
	if c == nil {
		return
	}
	c.client.Set(ctx, key, val, c.ttl)
}

// Key builds a namespaced cache key from a request fingerprint, keeping raw
// query payloads (which may contain addresses) out of the keyspace.
func Key(namespace string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return namespace + ":" + hex.EncodeToString(sum[:])
}
