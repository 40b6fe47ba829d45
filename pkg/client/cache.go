// Package client provides a notification cache for Go clients of the API,
// kept current by combining a REST pull with the realtime push events.
package client

import (
	"sync"
	"time"

	"github.com/ripplehq/ripple/backend/internal/models"
)

// Cache mirrors a user's notification list on the client. The server remains
// the source of truth; the cache only reorders itself from pushed events and
// full reloads. Safe for concurrent use.
type Cache struct {
	mu            sync.RWMutex
	notifications []models.EnrichedNotification
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Replace swaps the entire cached list, used after a REST reload or a
// backlog push. The input is copied.
func (c *Cache) Replace(notifications []models.EnrichedNotification) {
	copied := make([]models.EnrichedNotification, len(notifications))
	copy(copied, notifications)

	c.mu.Lock()
	c.notifications = copied
	c.mu.Unlock()
}

// Push prepends a newly delivered notification, keeping newest-first order.
func (c *Cache) Push(n models.EnrichedNotification) {
	c.mu.Lock()
	c.notifications = append([]models.EnrichedNotification{n}, c.notifications...)
	c.mu.Unlock()
}

// ApplyRead marks the cached notification read in place. Unknown ids are a
// no-op: the event may refer to a notification delivered to another session
// before this cache loaded.
func (c *Cache) ApplyRead(id string, readAt *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.notifications {
		if c.notifications[i].ID.Hex() == id {
			c.notifications[i].IsRead = true
			c.notifications[i].ReadAt = readAt
			return
		}
	}
}

// Remove drops the notification with the given id. Unknown ids are a no-op.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.notifications {
		if c.notifications[i].ID.Hex() == id {
			c.notifications = append(c.notifications[:i], c.notifications[i+1:]...)
			return
		}
	}
}

// UnreadCount recomputes the unread total by filtering the live list. There
// is deliberately no stored counter to drift out of sync.
func (c *Cache) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for i := range c.notifications {
		if !c.notifications[i].IsRead {
			count++
		}
	}
	return count
}

// Snapshot returns a copy of the cached list, newest first.
func (c *Cache) Snapshot() []models.EnrichedNotification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	copied := make([]models.EnrichedNotification, len(c.notifications))
	copy(copied, c.notifications)
	return copied
}

// Len reports the number of cached notifications.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.notifications)
}
