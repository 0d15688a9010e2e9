package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EarningTransaction records a single balance credit. One document is
// appended per qualifying view so the balance can be audited against the
// sum of credits minus withdrawals.
type EarningTransaction struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	PostID    primitive.ObjectID `json:"postId" bson:"postId"`
	Amount    float64            `json:"amount" bson:"amount"`
	Type      string             `json:"type" bson:"type"` // "view_credit"
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// EarningsSummary is what the earnings dashboard shows
type EarningsSummary struct {
	Balance       float64       `json:"balance"`
	TotalEarned   float64       `json:"totalEarned"`
	TotalWithdraw float64       `json:"totalWithdrawn"`
	Posts         []PostEarning `json:"posts,omitempty"`
}

// PostEarning is the display-only live estimate for one post. It is
// recomputed from the current view count and the current rate and can
// diverge from the stored balance when the rate has changed.
type PostEarning struct {
	PostID   primitive.ObjectID `json:"postId"`
	Title    string             `json:"title"`
	Views    int64              `json:"views"`
	Estimate float64            `json:"estimate"`
}
