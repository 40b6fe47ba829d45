package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post, stored in MongoDB. Answers are
// nested replies referencing their parent comment.
type Comment struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID   string             `json:"post_id" bson:"post_id"`
	AuthorID uint               `json:"author_id" bson:"author_id"`
	Content  string             `json:"content" bson:"content"`
	// ParentID is set when this comment answers another comment.
	ParentID  string    `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	AnswerIDs []string  `json:"answer_ids,omitempty" bson:"answer_ids,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
