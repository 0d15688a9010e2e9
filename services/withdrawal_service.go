// services/withdrawal_service.go
package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/repositories"
)

// maxWithdrawalAttempts bounds retries on transaction conflicts before
// the user is told to try again.
const maxWithdrawalAttempts = 3

// Validation failures surfaced to the requesting user. Each names the
// specific unmet precondition.
var (
	ErrInvalidAmount            = errors.New("withdrawal amount must be positive")
	ErrBelowMinimum             = errors.New("amount is below the minimum withdrawal amount")
	ErrPaymentDetailsIncomplete = errors.New("payment details incomplete")
	ErrTryAgain                 = errors.New("could not process withdrawal, please try again")
	ErrInvalidStatus            = errors.New("invalid withdrawal status")
)

// WithdrawalService converts balance into withdrawal requests and runs
// the admin status lifecycle.
type WithdrawalService struct {
	store    repositories.LedgerStore
	settings *SettingsService
}

// NewWithdrawalService creates the withdrawal workflow.
func NewWithdrawalService(store repositories.LedgerStore, settings *SettingsService) *WithdrawalService {
	return &WithdrawalService{store: store, settings: settings}
}

// RequestWithdrawal validates the request and then atomically debits the
// balance and creates a pending request. The balance check happens
// inside the store's transaction against the freshly-read value, never
// against whatever the caller's UI displayed; two concurrent requests
// that jointly exceed the balance can therefore never both succeed.
func (s *WithdrawalService) RequestWithdrawal(ctx context.Context, userID primitive.ObjectID, amount float64) (*models.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if amount < settings.MinimumWithdrawalAmount {
		return nil, ErrBelowMinimum
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.PaymentDetails.Complete() {
		return nil, ErrPaymentDetailsIncomplete
	}

	amount = RoundCurrency(amount)
	for attempt := 0; attempt < maxWithdrawalAttempts; attempt++ {
		request, err := s.store.CreateWithdrawal(ctx, userID, amount, *user.PaymentDetails)
		if errors.Is(err, repositories.ErrTransientConflict) {
			continue
		}
		return request, err
	}
	return nil, ErrTryAgain
}

// UpdateStatus moves a request to the given status on behalf of an
// admin. Transitions are deliberately permissive: any status may follow
// any other. Entering completed or rejected stamps ProcessedAt.
func (s *WithdrawalService) UpdateStatus(ctx context.Context, requestID primitive.ObjectID, status string, adminID primitive.ObjectID, note string) (*models.WithdrawalRequest, error) {
	if !models.ValidWithdrawalStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.store.UpdateWithdrawalStatus(ctx, requestID, status, adminID, note)
}

// ListForUser returns the user's own requests.
func (s *WithdrawalService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.WithdrawalRequest, error) {
	return s.store.ListWithdrawalsByUser(ctx, userID)
}

// ListByStatus returns requests filtered by status; empty status means
// all.
func (s *WithdrawalService) ListByStatus(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	if status != "" && !models.ValidWithdrawalStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.store.ListWithdrawalsByStatus(ctx, status)
}
