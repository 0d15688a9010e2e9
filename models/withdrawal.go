package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Withdrawal request statuses. Completed and rejected are terminal and
// stamp ProcessedAt on entry.
const (
	WithdrawalStatusPending    = "pending"
	WithdrawalStatusApproved   = "approved"
	WithdrawalStatusProcessing = "processing"
	WithdrawalStatusCompleted  = "completed"
	WithdrawalStatusRejected   = "rejected"
)

// ValidWithdrawalStatus reports whether s is a known status value.
func ValidWithdrawalStatus(s string) bool {
	switch s {
	case WithdrawalStatusPending, WithdrawalStatusApproved, WithdrawalStatusProcessing,
		WithdrawalStatusCompleted, WithdrawalStatusRejected:
		return true
	}
	return false
}

// TerminalWithdrawalStatus reports whether s ends the request lifecycle.
func TerminalWithdrawalStatus(s string) bool {
	return s == WithdrawalStatusCompleted || s == WithdrawalStatusRejected
}

// WithdrawalRequest model. Amount and PaymentDetails are fixed at
// creation time; only Status, AdminNote and ProcessedAt move afterwards,
// and only through the admin workflow.
type WithdrawalRequest struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID         primitive.ObjectID  `json:"userId" bson:"userId"`
	Amount         float64             `json:"amount" bson:"amount"`
	Status         string              `json:"status" bson:"status"`
	PaymentDetails PaymentDetails      `json:"paymentDetails" bson:"paymentDetails"`
	AdminID        *primitive.ObjectID `json:"adminId,omitempty" bson:"adminId,omitempty"`
	AdminNote      string              `json:"adminNote,omitempty" bson:"adminNote,omitempty"`
	RequestedAt    time.Time           `json:"requestedAt" bson:"requestedAt"`
	ProcessedAt    *time.Time          `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
}

// WithdrawalCreateRequest model for creating a withdrawal
type WithdrawalCreateRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// WithdrawalStatusUpdateRequest model for admin status transitions
type WithdrawalStatusUpdateRequest struct {
	Status    string `json:"status" validate:"required"`
	AdminNote string `json:"adminNote,omitempty"`
}
