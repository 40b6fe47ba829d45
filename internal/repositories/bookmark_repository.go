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

// BookmarkRepository covers saved posts
type BookmarkRepository interface {
	CreateBookmark(ctx context.Context, bookmark *models.Bookmark) error
	FindBookmark(ctx context.Context, postID string, userID uint) (*models.Bookmark, error)
	DeleteBookmark(ctx context.Context, postID string, userID uint) (bool, error)
	GetBookmarksByUser(ctx context.Context, userID uint) ([]models.Bookmark, error)
}

// MongoBookmarkRepository implements BookmarkRepository for MongoDB
type MongoBookmarkRepository struct {
	collection *mongo.Collection
}

// NewMongoBookmarkRepository creates a new MongoBookmarkRepository
func NewMongoBookmarkRepository(db *mongo.Database) *MongoBookmarkRepository {
	return &MongoBookmarkRepository{collection: db.Collection("bookmarks")}
}

// CreateBookmark inserts a saved-post record
func (r *MongoBookmarkRepository) CreateBookmark(ctx context.Context, bookmark *models.Bookmark) error {
	bookmark.ID = primitive.NewObjectID()
	bookmark.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, bookmark)
	return err
}

// FindBookmark returns the user's bookmark of a post, nil if absent
func (r *MongoBookmarkRepository) FindBookmark(ctx context.Context, postID string, userID uint) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := r.collection.FindOne(ctx, bson.M{"post_id": postID, "user_id": userID}).Decode(&bookmark)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &bookmark, nil
}

// DeleteBookmark removes the user's bookmark; reports whether one existed
func (r *MongoBookmarkRepository) DeleteBookmark(ctx context.Context, postID string, userID uint) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"post_id": postID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// GetBookmarksByUser retrieves a user's bookmarks, most recent first
func (r *MongoBookmarkRepository) GetBookmarksByUser(ctx context.Context, userID uint) ([]models.Bookmark, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookmarks := []models.Bookmark{}
	if err = cursor.All(ctx, &bookmarks); err != nil {
		return nil, err
	}
	return bookmarks, nil
}
