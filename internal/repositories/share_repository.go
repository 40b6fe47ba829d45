package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ripplehq/ripple/backend/internal/models"
)

// ShareRepository covers retweets of posts
type ShareRepository interface {
	CreateShare(ctx context.Context, share *models.Share) error
	FindShare(ctx context.Context, postID string, userID uint) (*models.Share, error)
	DeleteShare(ctx context.Context, postID string, userID uint) (bool, error)
	GetSharesByUser(ctx context.Context, userID uint) ([]models.Share, error)
}

// MongoShareRepository implements ShareRepository for MongoDB
type MongoShareRepository struct {
	collection *mongo.Collection
}

// NewMongoShareRepository creates a new MongoShareRepository
func NewMongoShareRepository(db *mongo.Database) *MongoShareRepository {
	return &MongoShareRepository{collection: db.Collection("shares")}
}

// CreateShare inserts a retweet record
func (r *MongoShareRepository) CreateShare(ctx context.Context, share *models.Share) error {
	share.ID = primitive.NewObjectID()
	share.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, share)
	return err
}

// FindShare returns the user's retweet of a post, nil if absent
func (r *MongoShareRepository) FindShare(ctx context.Context, postID string, userID uint) (*models.Share, error) {
	var share models.Share
	err := r.collection.FindOne(ctx, bson.M{"post_id": postID, "user_id": userID}).Decode(&share)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}

// DeleteShare removes the user's retweet; reports whether one existed
func (r *MongoShareRepository) DeleteShare(ctx context.Context, postID string, userID uint) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"post_id": postID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// GetSharesByUser retrieves a user's retweets, most recent first
func (r *MongoShareRepository) GetSharesByUser(ctx context.Context, userID uint) ([]models.Share, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	shares := []models.Share{}
	if err = cursor.All(ctx, &shares); err != nil {
		return nil, err
	}
	return shares, nil
}
