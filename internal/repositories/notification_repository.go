package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/pkg/apperrors"
)

// NotificationRepository defines durable CRUD for notification records plus
// the receiver-scoped listing query.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	GetByReceiver(ctx context.Context, receiverID uint) ([]models.Notification, error)
	// MarkRead is idempotent. The returned bool reports whether this call
	// performed the Unread to Read transition; a repeat call returns the
	// already-read record with false.
	MarkRead(ctx context.Context, id string) (*models.Notification, bool, error)
	Delete(ctx context.Context, id string) error
	// DeleteMatching removes at most one notification matching the undo of a
	// prior action. A missing match is already-consistent state, not an error.
	DeleteMatching(ctx context.Context, sender, receiver uint, kind, postID string) (*models.Notification, error)
	// DeleteReadBefore removes every notification marked read before cutoff.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountUnread(ctx context.Context, receiverID uint) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// Create persists a new notification, assigning its ID and timestamp
func (r *MongoNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.Sender == 0 || notification.Receiver == 0 || notification.Kind == "" {
		return apperrors.ErrValidation.WithMessage("sender, receiver and kind are required")
	}

	notification.ID = primitive.NewObjectID()
	notification.IsRead = false
	notification.ReadAt = nil
	notification.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// GetByID retrieves a notification by ID
func (r *MongoNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrValidation.WithMessage(fmt.Sprintf("invalid notification ID: %s", id))
	}

	var notification models.Notification
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&notification)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound.WithMessage("Notification not found")
		}
		return nil, err
	}
	return &notification, nil
}

// GetByReceiver retrieves all notifications for a receiver, most recent first
func (r *MongoNotificationRepository) GetByReceiver(ctx context.Context, receiverID uint) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"receiver": receiverID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flips is_read to true. The filter on is_read makes the transition
// atomic: under concurrent duplicate calls exactly one observes it.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id string) (*models.Notification, bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false, apperrors.ErrValidation.WithMessage(fmt.Sprintf("invalid notification ID: %s", id))
	}

	now := time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var notification models.Notification
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}},
		opts,
	).Decode(&notification)
	if err == nil {
		return &notification, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}

	// Either already read or gone entirely.
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Delete removes a notification by ID; a missing ID is reported as NotFound
func (r *MongoNotificationRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrValidation.WithMessage(fmt.Sprintf("invalid notification ID: %s", id))
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound.WithMessage("Notification not found")
	}
	return nil
}

// DeleteMatching removes the notification produced by an action being undone
func (r *MongoNotificationRepository) DeleteMatching(ctx context.Context, sender, receiver uint, kind, postID string) (*models.Notification, error) {
	filter := bson.M{"sender": sender, "receiver": receiver, "kind": kind}
	if postID != "" {
		filter["post_id"] = postID
	}

	var notification models.Notification
	err := r.collection.FindOneAndDelete(ctx, filter).Decode(&notification)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// DeleteReadBefore removes read notifications whose read_at is older than cutoff
func (r *MongoNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{
		"is_read": true,
		"read_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountUnread counts unread notifications for a receiver
func (r *MongoNotificationRepository) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiver": receiverID, "is_read": false})
}
