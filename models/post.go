package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post model for authored blog posts
type Post struct {
	ID          primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID    primitive.ObjectID   `json:"authorId" bson:"authorId"`
	Title       string               `json:"title" bson:"title"`
	Slug        string               `json:"slug" bson:"slug"`
	Content     string               `json:"content,omitempty" bson:"content,omitempty"`
	Tags        []string             `json:"tags,omitempty" bson:"tags,omitempty"`
	Status      string               `json:"status" bson:"status"` // "draft" or "published"
	Views       int64                `json:"views" bson:"views"`
	Likes       []primitive.ObjectID `json:"likes,omitempty" bson:"likes,omitempty"`
	Comments    []Comment            `json:"comments,omitempty" bson:"comments,omitempty"`
	PublishedAt *time.Time           `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Comment model for post comments
type Comment struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// PostRequest model for creating or updating a post
type PostRequest struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// CommentRequest model for adding a comment
type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// ViewRequest carries what the page instrumentation measured before
// reporting a view
type ViewRequest struct {
	SessionID    string `json:"sessionId"`
	DwellSeconds int    `json:"dwellSeconds"`
}
