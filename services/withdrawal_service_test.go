package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/repositories"
)

func upiDetails() *models.PaymentDetails {
	return &models.PaymentDetails{Method: "upi", Country: "IN", UpiID: "author@upi"}
}

func newWithdrawalFixture(t *testing.T, balance float64) (*repositories.MemoryStore, *WithdrawalService, primitive.ObjectID) {
	t.Helper()
	store := repositories.NewMemoryStore()
	settings := NewSettingsService(store)
	svc := NewWithdrawalService(store, settings)
	userID := store.AddUser(models.User{
		Email:                  "author@mindly.app",
		FullName:               "Author",
		UserType:               "user",
		IsMonetizationApproved: true,
		VirtualEarnings:        balance,
		PaymentDetails:         upiDetails(),
	})
	return store, svc, userID
}

func TestWithdrawalScenario(t *testing.T) {
	// balance $12, minimum $10
	store, svc, userID := newWithdrawalFixture(t, 12.00)
	ctx := context.Background()

	// $15 exceeds the balance
	_, err := svc.RequestWithdrawal(ctx, userID, 15)
	assert.ErrorIs(t, err, repositories.ErrInsufficientBalance)
	user, _ := store.GetUser(ctx, userID)
	assert.Equal(t, 12.00, user.VirtualEarnings)

	// $8 is below the minimum
	_, err = svc.RequestWithdrawal(ctx, userID, 8)
	assert.ErrorIs(t, err, ErrBelowMinimum)
	user, _ = store.GetUser(ctx, userID)
	assert.Equal(t, 12.00, user.VirtualEarnings)

	// $10 is accepted
	request, err := svc.RequestWithdrawal(ctx, userID, 10)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusPending, request.Status)
	assert.Equal(t, 10.00, request.Amount)

	user, _ = store.GetUser(ctx, userID)
	assert.InDelta(t, 2.00, user.VirtualEarnings, 1e-9)

	requests, err := svc.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, models.WithdrawalStatusPending, requests[0].Status)
}

func TestWithdrawalRejectsNonPositiveAmount(t *testing.T) {
	_, svc, userID := newWithdrawalFixture(t, 100)

	_, err := svc.RequestWithdrawal(context.Background(), userID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RequestWithdrawal(context.Background(), userID, -10)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestWithdrawalRequiresCompletePaymentDetails(t *testing.T) {
	store, svc, userID := newWithdrawalFixture(t, 100)
	ctx := context.Background()

	cases := []*models.PaymentDetails{
		nil,
		{Method: "upi"},
		{Method: "bank", AccountHolder: "Author", AccountNumber: "1234"},
		{Method: "paypal"},
		{Method: "cash", UpiID: "x"},
	}
	for _, details := range cases {
		store.SetUserPaymentDetails(userID, details)
		_, err := svc.RequestWithdrawal(ctx, userID, 20)
		assert.ErrorIs(t, err, ErrPaymentDetailsIncomplete)
	}

	store.SetUserPaymentDetails(userID, &models.PaymentDetails{
		Method: "bank", AccountHolder: "Author", AccountNumber: "1234",
		BankName: "Mindly Bank", IFSCCode: "MNDL0001",
	})
	_, err := svc.RequestWithdrawal(ctx, userID, 20)
	assert.NoError(t, err)
}

func TestWithdrawalSnapshotSurvivesDetailChanges(t *testing.T) {
	store, svc, userID := newWithdrawalFixture(t, 50)
	ctx := context.Background()

	request, err := svc.RequestWithdrawal(ctx, userID, 20)
	require.NoError(t, err)
	assert.Equal(t, "author@upi", request.PaymentDetails.UpiID)

	store.SetUserPaymentDetails(userID, &models.PaymentDetails{
		Method: "paypal", PaypalEmail: "new@paypal.com",
	})

	stored, err := store.GetWithdrawal(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "upi", stored.PaymentDetails.Method)
	assert.Equal(t, "author@upi", stored.PaymentDetails.UpiID,
		"snapshot must not follow later payment detail edits")
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	store, svc, userID := newWithdrawalFixture(t, 30)
	ctx := context.Background()

	// Two $20 requests individually fit but jointly exceed $30.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RequestWithdrawal(ctx, userID, 20)
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, repositories.ErrInsufficientBalance)
			failed++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)

	user, err := store.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.InDelta(t, 10.00, user.VirtualEarnings, 1e-9)
}

func TestBalanceNeverNegativeUnderRandomInterleavings(t *testing.T) {
	store := repositories.NewMemoryStore()
	settings := NewSettingsService(store)
	ledger := NewEarningsService(store, settings)
	withdrawals := NewWithdrawalService(store, settings)
	ctx := context.Background()

	// 1.00 per view so every credit clears the default 10.00 minimum
	// after ten views.
	_, err := settings.Update(ctx, models.SettingsUpdateRequest{BaseEarningPerView: floatPtr(1)})
	require.NoError(t, err)

	userID := store.AddUser(models.User{
		Email:                  "author@mindly.app",
		UserType:               "user",
		IsMonetizationApproved: true,
		PaymentDetails:         upiDetails(),
	})
	postID := store.AddPost(models.Post{AuthorID: userID, Status: models.PostStatusPublished})

	rng := rand.New(rand.NewSource(42))
	var credited, withdrawn float64
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			require.NoError(t, ledger.RecordQualifyingView(ctx, postID))
			credited += 1.00
		} else {
			amount := float64(10 + rng.Intn(30))
			request, err := withdrawals.RequestWithdrawal(ctx, userID, amount)
			if err == nil {
				withdrawn += request.Amount
			} else {
				assert.ErrorIs(t, err, repositories.ErrInsufficientBalance)
			}
		}

		user, err := store.GetUser(ctx, userID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, user.VirtualEarnings, 0.0)
		assert.InDelta(t, credited-withdrawn, user.VirtualEarnings, 1e-6,
			"balance must equal credits minus successful withdrawals")
	}
}

func TestWithdrawalListsAreNewestFirst(t *testing.T) {
	_, svc, userID := newWithdrawalFixture(t, 100)
	ctx := context.Background()

	for _, amount := range []float64{10, 11, 12} {
		_, err := svc.RequestWithdrawal(ctx, userID, amount)
		require.NoError(t, err)
	}

	requests, err := svc.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, requests, 3)
	assert.Equal(t, 12.00, requests[0].Amount)
	assert.Equal(t, 11.00, requests[1].Amount)
	assert.Equal(t, 10.00, requests[2].Amount)

	byStatus, err := svc.ListByStatus(ctx, models.WithdrawalStatusPending)
	require.NoError(t, err)
	require.Len(t, byStatus, 3)
	assert.Equal(t, 12.00, byStatus[0].Amount)
}

func TestStatusTransitionsArePermissiveAndStampProcessedAt(t *testing.T) {
	store, svc, userID := newWithdrawalFixture(t, 50)
	ctx := context.Background()
	adminID := primitive.NewObjectID()

	request, err := svc.RequestWithdrawal(ctx, userID, 20)
	require.NoError(t, err)

	// pending -> completed directly is allowed
	updated, err := svc.UpdateStatus(ctx, request.ID, models.WithdrawalStatusCompleted, adminID, "paid out")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusCompleted, updated.Status)
	require.NotNil(t, updated.ProcessedAt)
	assert.Equal(t, "paid out", updated.AdminNote)

	// leaving a terminal state is allowed too; the design does not
	// enforce a linear order
	updated, err = svc.UpdateStatus(ctx, request.ID, models.WithdrawalStatusProcessing, adminID, "")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusProcessing, updated.Status)

	updated, err = svc.UpdateStatus(ctx, request.ID, models.WithdrawalStatusRejected, adminID, "duplicate")
	require.NoError(t, err)
	require.NotNil(t, updated.ProcessedAt)

	_, err = svc.UpdateStatus(ctx, request.ID, "refunded", adminID, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// the amount never moved through all of this
	stored, err := store.GetWithdrawal(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.00, stored.Amount)
}

// conflictStore wraps a LedgerStore and fails CreateWithdrawal with a
// transient conflict a fixed number of times.
type conflictStore struct {
	repositories.LedgerStore
	mu        sync.Mutex
	conflicts int
}

func (s *conflictStore) CreateWithdrawal(ctx context.Context, userID primitive.ObjectID, amount float64, details models.PaymentDetails) (*models.WithdrawalRequest, error) {
	s.mu.Lock()
	remaining := s.conflicts
	if remaining > 0 {
		s.conflicts--
	}
	s.mu.Unlock()
	if remaining > 0 {
		return nil, repositories.ErrTransientConflict
	}
	return s.LedgerStore.CreateWithdrawal(ctx, userID, amount, details)
}

func TestWithdrawalRetriesTransientConflicts(t *testing.T) {
	memory := repositories.NewMemoryStore()
	userID := memory.AddUser(models.User{
		Email:           "author@mindly.app",
		UserType:        "user",
		VirtualEarnings: 100,
		PaymentDetails:  upiDetails(),
	})

	// Two conflicts, third attempt lands.
	store := &conflictStore{LedgerStore: memory, conflicts: 2}
	svc := NewWithdrawalService(store, NewSettingsService(memory))

	request, err := svc.RequestWithdrawal(context.Background(), userID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25.00, request.Amount)
}

func TestWithdrawalGivesUpAfterBoundedRetries(t *testing.T) {
	memory := repositories.NewMemoryStore()
	userID := memory.AddUser(models.User{
		Email:           "author@mindly.app",
		UserType:        "user",
		VirtualEarnings: 100,
		PaymentDetails:  upiDetails(),
	})

	store := &conflictStore{LedgerStore: memory, conflicts: 10}
	svc := NewWithdrawalService(store, NewSettingsService(memory))

	_, err := svc.RequestWithdrawal(context.Background(), userID, 25)
	assert.ErrorIs(t, err, ErrTryAgain)

	user, err := memory.GetUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 100.00, user.VirtualEarnings, "no partial debit may survive a failed request")
}
