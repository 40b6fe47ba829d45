package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interaction represents a like or dislike on a post, stored in MongoDB.
// Like=true is a like, Like=false a dislike; a user holds at most one
// interaction per post.
type Interaction struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID    string             `json:"post_id" bson:"post_id"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	Like      bool               `json:"like" bson:"like"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Share represents a retweet of a post
type Share struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID    string             `json:"post_id" bson:"post_id"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Bookmark represents a post saved by a user
type Bookmark struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID    string             `json:"post_id" bson:"post_id"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
