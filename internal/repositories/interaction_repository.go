package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ripplehq/ripple/backend/internal/models"
)

// InteractionRepository covers likes and dislikes on posts
type InteractionRepository interface {
	CreateInteraction(ctx context.Context, interaction *models.Interaction) error
	FindInteraction(ctx context.Context, postID string, userID uint, like bool) (*models.Interaction, error)
	DeleteInteraction(ctx context.Context, postID string, userID uint, like bool) (bool, error)
}

// MongoInteractionRepository implements InteractionRepository for MongoDB
type MongoInteractionRepository struct {
	collection *mongo.Collection
}

// NewMongoInteractionRepository creates a new MongoInteractionRepository
func NewMongoInteractionRepository(db *mongo.Database) *MongoInteractionRepository {
	return &MongoInteractionRepository{collection: db.Collection("interactions")}
}

// CreateInteraction inserts a like/dislike record
func (r *MongoInteractionRepository) CreateInteraction(ctx context.Context, interaction *models.Interaction) error {
	interaction.ID = primitive.NewObjectID()
	interaction.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, interaction)
	return err
}

// FindInteraction returns the user's like or dislike on a post, nil if absent
func (r *MongoInteractionRepository) FindInteraction(ctx context.Context, postID string, userID uint, like bool) (*models.Interaction, error) {
	var interaction models.Interaction
	err := r.collection.FindOne(ctx, bson.M{"post_id": postID, "user_id": userID, "like": like}).Decode(&interaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &interaction, nil
}

// DeleteInteraction removes the user's like or dislike; reports whether one existed
func (r *MongoInteractionRepository) DeleteInteraction(ctx context.Context, postID string, userID uint, like bool) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"post_id": postID, "user_id": userID, "like": like})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
