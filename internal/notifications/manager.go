package notifications

import (
	"context"

	"go.uber.org/zap"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/repositories"
	"github.com/ripplehq/ripple/backend/pkg/apperrors"
	"github.com/ripplehq/ripple/backend/pkg/logger"
)

// Emitter routes events to every live connection of a user identity.
// Implemented by realtime.Hub.
type Emitter interface {
	Emit(userID uint, event string, payload any)
}

// Events pushed over the realtime channel.
const (
	EventNotification        = "notification"
	EventNotificationRead    = "notification-read"
	EventNotificationDeleted = "notification-deleted"
	EventNotifications       = "notifications"
)

// SendInput carries the parameters of a notification send.
type SendInput struct {
	Sender   uint
	Receiver uint
	Kind     string
	// Message overrides the per-kind default when non-empty.
	Message   string
	PostID    string
	CommentID string
	ShareID   string
}

// Manager is the single orchestration point for raising notifications.
// Every collaborator subsystem (likes, comments, follows, posts) calls it
// after its own write has committed; a Manager failure is a secondary
// failure and never unwinds the caller's primary action.
type Manager struct {
	store    repositories.NotificationRepository
	users    repositories.UserRepository
	emitter  Emitter
	enricher *Enricher
	log      *zap.Logger
}

// NewManager constructs a Manager.
func NewManager(store repositories.NotificationRepository, users repositories.UserRepository, emitter Emitter, enricher *Enricher) *Manager {
	return &Manager{
		store:    store,
		users:    users,
		emitter:  emitter,
		enricher: enricher,
		log:      logger.WithModule("notifications"),
	}
}

// SendNotification validates participants, honors the receiver's preference,
// persists the record, and pushes the enriched payload to the receiver's
// live connections. A disabled receiver preference returns (nil, nil): a
// defined success with no record and no delivery.
func (m *Manager) SendNotification(ctx context.Context, in SendInput) (*models.Notification, error) {
	if in.Sender == 0 || in.Receiver == 0 || in.Kind == "" {
		return nil, apperrors.ErrValidation.WithMessage("sender, receiver and kind are required")
	}

	sender, err := m.users.GetUserByID(in.Sender)
	if err != nil {
		return nil, err
	}
	receiver, err := m.users.GetUserByID(in.Receiver)
	if err != nil {
		return nil, err
	}

	if !receiver.NotificationsEnabled {
		return nil, nil
	}

	message := in.Message
	if message == "" {
		message = DefaultMessage(in.Kind, sender.DisplayName())
	}

	notification := &models.Notification{
		Sender:    in.Sender,
		Receiver:  in.Receiver,
		Kind:      in.Kind,
		PostID:    in.PostID,
		CommentID: in.CommentID,
		ShareID:   in.ShareID,
		Message:   message,
	}

	if err := m.store.Create(ctx, notification); err != nil {
		m.log.Error("persist notification",
			zap.Uint("sender", in.Sender),
			zap.Uint("receiver", in.Receiver),
			zap.String("kind", in.Kind),
			zap.Error(err))
		return nil, apperrors.ErrDelivery.WithInternal(err)
	}

	enriched := models.EnrichedNotification{
		Notification: *notification,
		SenderInfo:   sender.ToCompact(),
	}
	m.emitter.Emit(in.Receiver, EventNotification, enriched)

	m.log.Debug("notification sent",
		zap.String("id", notification.ID.Hex()),
		zap.String("kind", in.Kind),
		zap.Uint("receiver", in.Receiver))

	return notification, nil
}

// DeleteNotification is the best-effort undo counterpart of SendNotification:
// when an action is reverted (unlike, unfollow) the matching notification is
// removed and live sessions are told. A missing match is already-consistent
// state, not an error.
func (m *Manager) DeleteNotification(ctx context.Context, sender, receiver uint, kind, postID string) error {
	removed, err := m.store.DeleteMatching(ctx, sender, receiver, kind, postID)
	if err != nil {
		m.log.Error("delete matching notification",
			zap.Uint("sender", sender),
			zap.Uint("receiver", receiver),
			zap.String("kind", kind),
			zap.Error(err))
		return apperrors.ErrDelivery.WithInternal(err)
	}
	if removed == nil {
		return nil
	}

	m.emitter.Emit(receiver, EventNotificationDeleted, map[string]string{"id": removed.ID.Hex()})
	return nil
}

// SendBacklog pushes the receiver's stored notifications over the realtime
// channel, used on connect when backlog push is enabled.
func (m *Manager) SendBacklog(ctx context.Context, receiver uint) error {
	notifications, err := m.store.GetByReceiver(ctx, receiver)
	if err != nil {
		return apperrors.ErrDelivery.WithInternal(err)
	}

	m.emitter.Emit(receiver, EventNotifications, m.enricher.EnrichAll(ctx, notifications))
	return nil
}
