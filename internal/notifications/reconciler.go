package notifications

import (
	"context"

	"go.uber.org/zap"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/repositories"
	"github.com/ripplehq/ripple/backend/pkg/apperrors"
	"github.com/ripplehq/ripple/backend/pkg/logger"
)

// Reconciler owns read-state transitions and explicit deletion, keeping
// every live session of a user convergent with the store.
type Reconciler struct {
	store   repositories.NotificationRepository
	emitter Emitter
	log     *zap.Logger
}

// NewReconciler constructs a Reconciler.
func NewReconciler(store repositories.NotificationRepository, emitter Emitter) *Reconciler {
	return &Reconciler{
		store:   store,
		emitter: emitter,
		log:     logger.WithModule("notifications"),
	}
}

// MarkAsRead flips a notification to read. Only the receiver may mark their
// own notification; repeat calls are no-ops returning the same state. The
// notification-read event goes out only on the actual Unread to Read
// transition, so concurrent duplicate calls emit once.
func (r *Reconciler) MarkAsRead(ctx context.Context, notificationID string, requesterID uint) (*models.Notification, error) {
	notification, err := r.store.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.Receiver != requesterID {
		return nil, apperrors.ErrAuthorization.WithMessage("Only the receiver may mark a notification read")
	}

	updated, transitioned, err := r.store.MarkRead(ctx, notificationID)
	if err != nil {
		return nil, err
	}

	if transitioned {
		r.emitter.Emit(updated.Receiver, EventNotificationRead, updated)
		r.log.Debug("notification read",
			zap.String("id", notificationID),
			zap.Uint("receiver", requesterID))
	}

	return updated, nil
}

// Delete removes a notification at the receiver's request and tells their
// live sessions. Racing with the expiry sweep is harmless: a record already
// gone after the ownership check is treated as deleted.
func (r *Reconciler) Delete(ctx context.Context, notificationID string, requesterID uint) error {
	notification, err := r.store.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.Receiver != requesterID {
		return apperrors.ErrAuthorization.WithMessage("Only the receiver may delete a notification")
	}

	if err := r.store.Delete(ctx, notificationID); err != nil {
		if apperrors.FromError(err).Code != apperrors.ErrNotFound.Code {
			return err
		}
	}

	r.emitter.Emit(requesterID, EventNotificationDeleted, map[string]string{"id": notificationID})
	return nil
}
