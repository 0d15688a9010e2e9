// repositories/store.go
package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/blogchain/mindly_backend/models"
)

// Sentinel errors returned by LedgerStore implementations. Controllers
// map these to user-facing messages.
var (
	ErrNotFound            = errors.New("document not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransientConflict   = errors.New("transaction conflict, try again")
)

// LedgerStore is the narrow contract the earnings and withdrawal
// services depend on. Everything balance-affecting goes through here;
// implementations must keep the debit+create step of CreateWithdrawal
// atomic.
type LedgerStore interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error)

	// ApplyQualifyingView bumps the post's view counter and, when
	// amount > 0, credits the author's balance and appends the earning
	// transaction for the audit trail. All of it lands in one durable
	// unit or not at all: a credit must never exist without its audit
	// document. Returns ErrNotFound when the post is no longer
	// published.
	ApplyQualifyingView(ctx context.Context, postID, authorID primitive.ObjectID, amount float64) error

	// GetSettings returns the settings singleton or ErrNotFound.
	GetSettings(ctx context.Context) (*models.EarningsSettings, error)

	// UpdateSettings merges the non-nil fields into the singleton,
	// creating it from defaults when missing.
	UpdateSettings(ctx context.Context, req models.SettingsUpdateRequest) (*models.EarningsSettings, error)

	// CreateWithdrawal re-reads the balance, debits it and inserts a
	// pending request in one atomic step. Returns
	// ErrInsufficientBalance when the balance no longer covers amount
	// and ErrTransientConflict on a retryable conflict.
	CreateWithdrawal(ctx context.Context, userID primitive.ObjectID, amount float64, details models.PaymentDetails) (*models.WithdrawalRequest, error)

	GetWithdrawal(ctx context.Context, id primitive.ObjectID) (*models.WithdrawalRequest, error)

	// UpdateWithdrawalStatus moves a request to status and returns the
	// updated document. Entering a terminal status stamps ProcessedAt.
	UpdateWithdrawalStatus(ctx context.Context, id primitive.ObjectID, status string, adminID primitive.ObjectID, note string) (*models.WithdrawalRequest, error)

	ListWithdrawalsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.WithdrawalRequest, error)
	ListWithdrawalsByStatus(ctx context.Context, status string) ([]models.WithdrawalRequest, error)
	ListEarningsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.EarningTransaction, error)
}
