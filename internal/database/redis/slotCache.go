package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/parkgolf/slot-service/internal/entity"
)

// SlotCache keeps slot details on the synchronous read path. Entries are
// invalidated whenever the capacity ledger mutates the slot, so a cached row
// can be at most one TTL stale after an administrative change only.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSlotCache(client *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{client: client, ttl: ttl}
}

func slotKey(id int64) string {
	return fmt.Sprintf("slot:%d", id)
}

func (c *SlotCache) Get(ctx context.Context, id int64) (*entity.Slot, error) {
	data, err := c.client.Get(ctx, slotKey(id)).Result()
	if err != nil {
		return nil, err
	}

	var slot entity.Slot
	if err := json.Unmarshal([]byte(data), &slot); err != nil {
		return nil, err
	}

	return &slot, nil
}

func (c *SlotCache) Set(ctx context.Context, slot *entity.Slot) error {
	data, err := json.Marshal(slot)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, slotKey(slot.ID), data, c.ttl).Err()
}

func (c *SlotCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, slotKey(id)).Err()
}
