package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce tries to acquire a dedup lock for a given scope + entity ID.
// Returns true if this is the FIRST time processing, false on a duplicate.
// When redis is unavailable it fails open and returns true; the persistence
// layer's own idempotence guards remain the backstop.
func (d *Deduper) AcquireOnce(ctx context.Context, scope string, id string) bool {
	key := fmt.Sprintf("dedup:%s:%s", scope, id)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release drops an acquired lock so a later retry is processed again.
// Callers must release when the work behind the lock failed; otherwise the
// retry would be swallowed as a duplicate until the TTL expires.
func (d *Deduper) Release(ctx context.Context, scope string, id string) {
	key := fmt.Sprintf("dedup:%s:%s", scope, id)
	d.rdb.Del(ctx, key)
}
