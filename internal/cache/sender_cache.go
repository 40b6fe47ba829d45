package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ripplehq/ripple/backend/internal/models"
)

const senderSnapshotTTL = 5 * time.Minute

// SenderCache caches sender display snapshots in Redis so repeated
// enrichment of notification payloads does not hammer the user store.
// A nil SenderCache (no Redis configured) is valid and always misses.
type SenderCache struct {
	client *redis.Client
}

// NewSenderCache wraps a Redis client; client may be nil.
func NewSenderCache(client *redis.Client) *SenderCache {
	if client == nil {
		return nil
	}
	return &SenderCache{client: client}
}

func snapshotKey(userID uint) string {
	return fmt.Sprintf("sender:snapshot:%d", userID)
}

// Get returns the cached snapshot for a user, reporting whether one was found.
func (c *SenderCache) Get(ctx context.Context, userID uint) (models.UserCompact, bool) {
	var snapshot models.UserCompact
	if c == nil {
		return snapshot, false
	}

	data, err := c.client.Get(ctx, snapshotKey(userID)).Bytes()
	if err != nil {
		return snapshot, false
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, false
	}
	return snapshot, true
}

// Set stores a snapshot with a short TTL; failures are ignored, the cache is
// purely an optimization.
func (c *SenderCache) Set(ctx context.Context, snapshot models.UserCompact) {
	if c == nil {
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	c.client.Set(ctx, snapshotKey(snapshot.ID), data, senderSnapshotTTL)
}

// Invalidate drops the cached snapshot, called when a profile changes.
func (c *SenderCache) Invalidate(ctx context.Context, userID uint) {
	if c == nil {
		return
	}
	c.client.Del(ctx, snapshotKey(userID))
}
