package notifications

import (
	"context"

	"github.com/ripplehq/ripple/backend/internal/cache"
	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/repositories"
)

// Enricher attaches sender display snapshots to notifications at delivery
// time. The durable record only stores the sender identity; the snapshot is
// recomputed here (optionally through the Redis cache), so profile changes
// affect future deliveries without rewriting history already pushed.
type Enricher struct {
	users       repositories.UserRepository
	senderCache *cache.SenderCache
}

// NewEnricher creates an Enricher; senderCache may be nil.
func NewEnricher(users repositories.UserRepository, senderCache *cache.SenderCache) *Enricher {
	return &Enricher{users: users, senderCache: senderCache}
}

// Snapshot returns the public display fields for a user.
func (e *Enricher) Snapshot(ctx context.Context, userID uint) (models.UserCompact, error) {
	if snapshot, ok := e.senderCache.Get(ctx, userID); ok {
		return snapshot, nil
	}

	user, err := e.users.GetUserByID(userID)
	if err != nil {
		return models.UserCompact{}, err
	}

	snapshot := user.ToCompact()
	e.senderCache.Set(ctx, snapshot)
	return snapshot, nil
}

// Enrich wraps a single notification with its sender snapshot.
func (e *Enricher) Enrich(ctx context.Context, n models.Notification) models.EnrichedNotification {
	enriched := models.EnrichedNotification{Notification: n}
	if snapshot, err := e.Snapshot(ctx, n.Sender); err == nil {
		enriched.SenderInfo = snapshot
	}
	return enriched
}

// EnrichAll wraps a list of notifications, deduplicating snapshot lookups
// per sender within the call.
func (e *Enricher) EnrichAll(ctx context.Context, ns []models.Notification) []models.EnrichedNotification {
	enriched := make([]models.EnrichedNotification, len(ns))
	seen := make(map[uint]models.UserCompact)

	for i, n := range ns {
		enriched[i] = models.EnrichedNotification{Notification: n}
		if snapshot, ok := seen[n.Sender]; ok {
			enriched[i].SenderInfo = snapshot
			continue
		}
		if snapshot, err := e.Snapshot(ctx, n.Sender); err == nil {
			seen[n.Sender] = snapshot
			enriched[i].SenderInfo = snapshot
		}
	}
	return enriched
}
