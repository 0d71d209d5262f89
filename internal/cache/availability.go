package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/Zdenek156/bereifung24-scheduling/internal/domain/booking"
)

// Availability caches computed free slots per schedule owner and date.
// Entries are versioned: invalidation bumps the owner/date version so
// every cached duration variant goes stale at once. Redis being down or
// absent degrades to recomputation, never to an error.
type Availability struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAvailability(rdb *redis.Client, ttl time.Duration) *Availability {
	return &Availability{rdb: rdb, ttl: ttl}
}

func (c *Availability) versionKey(ownerKey, date string) string {
	return fmt.Sprintf("availability:ver:%s:%s", ownerKey, date)
}

func (c *Availability) slotKey(ctx context.Context, ownerKey, date string, duration int) (string, error) {
	ver, err := c.rdb.Get(ctx, c.versionKey(ownerKey, date)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("availability:%s:%s:%d:v%d", ownerKey, date, duration, ver), nil
}

func (c *Availability) Get(ctx context.Context, ownerKey, date string, duration int) ([]domain.TimeSlot, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	key, err := c.slotKey(ctx, ownerKey, date, duration)
	if err != nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []domain.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *Availability) Set(ctx context.Context, ownerKey, date string, duration int, slots []domain.TimeSlot) {
	if c == nil || c.rdb == nil {
		return
	}

	key, err := c.slotKey(ctx, ownerKey, date, duration)
	if err != nil {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, raw, c.ttl)
}

// Invalidate drops every cached slot list for the owner and date.
func (c *Availability) Invalidate(ctx context.Context, ownerKey, date string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Incr(ctx, c.versionKey(ownerKey, date))
}
