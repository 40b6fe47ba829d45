package notifications

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/pkg/logger"
)

const clientEventTimeout = 10 * time.Second

// Client-to-server events received over the realtime channel.
const (
	ClientEventTest     = "test-notification"
	ClientEventMarkRead = "mark-notification-read"
	ClientEventDelete   = "delete-notification"
)

// ClientEvents bridges inbound WebSocket events to the manager and
// reconciler. The identity is the authenticated connection owner, never a
// field of the payload, so a client can only act on its own notifications.
type ClientEvents struct {
	manager     *Manager
	reconciler  *Reconciler
	testEnabled bool
	log         *zap.Logger
}

// NewClientEvents constructs the bridge; testEnabled gates the developer
// echo-back trigger and must stay off in production.
func NewClientEvents(manager *Manager, reconciler *Reconciler, testEnabled bool) *ClientEvents {
	return &ClientEvents{
		manager:     manager,
		reconciler:  reconciler,
		testEnabled: testEnabled,
		log:         logger.WithModule("notifications"),
	}
}

// HandleClientEvent implements realtime.ClientEventHandler.
func (e *ClientEvents) HandleClientEvent(userID uint, event string, data json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), clientEventTimeout)
	defer cancel()

	switch event {
	case ClientEventMarkRead:
		var payload struct {
			NotificationID string `json:"notificationId"`
		}
		if err := json.Unmarshal(data, &payload); err != nil || payload.NotificationID == "" {
			return
		}
		if _, err := e.reconciler.MarkAsRead(ctx, payload.NotificationID, userID); err != nil {
			e.log.Warn("client mark-read failed",
				zap.String("id", payload.NotificationID),
				zap.Uint("user", userID),
				zap.Error(err))
		}

	case ClientEventDelete:
		var payload struct {
			NotificationID string `json:"notificationId"`
		}
		if err := json.Unmarshal(data, &payload); err != nil || payload.NotificationID == "" {
			return
		}
		if err := e.reconciler.Delete(ctx, payload.NotificationID, userID); err != nil {
			e.log.Warn("client delete failed",
				zap.String("id", payload.NotificationID),
				zap.Uint("user", userID),
				zap.Error(err))
		}

	case ClientEventTest:
		if !e.testEnabled {
			return
		}
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &payload)
		if _, err := e.manager.SendNotification(ctx, SendInput{
			Sender:   userID,
			Receiver: userID,
			Kind:     models.KindTest,
			Message:  payload.Message,
		}); err != nil {
			e.log.Warn("test notification failed", zap.Uint("user", userID), zap.Error(err))
		}
	}
}
