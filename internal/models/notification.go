package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds. The set is closed; unknown kinds fall back to a
// generic message template but are still persisted as-is.
const (
	KindLike      = "like"
	KindUnlike    = "unlike"
	KindComment   = "comment"
	KindUncomment = "uncomment"
	KindFollow    = "follow"
	KindUnfollow  = "unfollow"
	KindPost      = "post"
	KindRetweet   = "retweet"
	KindAnswer    = "answer"
	KindBookmark  = "bookmark"
	KindTest      = "test"
)

// Notification represents a notification record stored in MongoDB.
// Sender and Receiver reference user IDs in PostgreSQL; the stored record
// never carries sender display data, that snapshot is attached at delivery
// time (see EnrichedNotification).
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Sender    uint               `json:"sender" bson:"sender"`
	Receiver  uint               `json:"receiver" bson:"receiver"`
	Kind      string             `json:"kind" bson:"kind"`
	PostID    string             `json:"post_id,omitempty" bson:"post_id,omitempty"`
	CommentID string             `json:"comment_id,omitempty" bson:"comment_id,omitempty"`
	ShareID   string             `json:"share_id,omitempty" bson:"share_id,omitempty"`
	Message   string             `json:"message" bson:"message"`
	IsRead    bool               `json:"is_read" bson:"is_read"`
	ReadAt    *time.Time         `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// EnrichedNotification is a notification with the sender's public display
// snapshot attached. Delivered to clients, never persisted.
type EnrichedNotification struct {
	Notification
	SenderInfo UserCompact `json:"sender_info"`
}
