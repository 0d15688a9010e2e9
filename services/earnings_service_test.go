package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/repositories"
)

func newLedger(t *testing.T) (*repositories.MemoryStore, *SettingsService, *EarningsService) {
	t.Helper()
	store := repositories.NewMemoryStore()
	settings := NewSettingsService(store)
	return store, settings, NewEarningsService(store, settings)
}

func seedAuthorWithPost(store *repositories.MemoryStore, approved bool, status string) (primitive.ObjectID, primitive.ObjectID) {
	authorID := store.AddUser(models.User{
		Email:                  "author@mindly.app",
		FullName:               "Author",
		UserType:               "user",
		IsMonetizationApproved: approved,
	})
	now := time.Now()
	post := models.Post{
		AuthorID: authorID,
		Title:    "First post",
		Status:   status,
	}
	if status == models.PostStatusPublished {
		post.PublishedAt = &now
	}
	postID := store.AddPost(post)
	return authorID, postID
}

func TestViewOnDraftPostIncrementsNothing(t *testing.T) {
	store, _, ledger := newLedger(t)
	authorID, postID := seedAuthorWithPost(store, true, models.PostStatusDraft)

	err := ledger.RecordQualifyingView(context.Background(), postID)
	require.NoError(t, err)

	post, err := store.GetPost(context.Background(), postID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, post.Views)

	author, err := store.GetUser(context.Background(), authorID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, author.VirtualEarnings)
}

func TestViewOnMissingPostIsNoOp(t *testing.T) {
	_, _, ledger := newLedger(t)
	err := ledger.RecordQualifyingView(context.Background(), primitive.NewObjectID())
	assert.NoError(t, err)
}

func TestUnapprovedAuthorGetsViewsButNoCredit(t *testing.T) {
	store, _, ledger := newLedger(t)
	authorID, postID := seedAuthorWithPost(store, false, models.PostStatusPublished)

	for i := 0; i < 5; i++ {
		require.NoError(t, ledger.RecordQualifyingView(context.Background(), postID))
	}

	post, err := store.GetPost(context.Background(), postID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, post.Views)

	author, err := store.GetUser(context.Background(), authorID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, author.VirtualEarnings)
}

func TestApprovedAuthorIsCreditedPerView(t *testing.T) {
	store, _, ledger := newLedger(t)
	authorID, postID := seedAuthorWithPost(store, true, models.PostStatusPublished)

	for i := 0; i < 10; i++ {
		require.NoError(t, ledger.RecordQualifyingView(context.Background(), postID))
	}

	post, err := store.GetPost(context.Background(), postID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, post.Views)

	author, err := store.GetUser(context.Background(), authorID)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, author.VirtualEarnings, 1e-9)

	history, err := store.ListEarningsByUser(context.Background(), authorID)
	require.NoError(t, err)
	assert.Len(t, history, 10)
}

func TestRateChangeDoesNotRewriteEarnedBalance(t *testing.T) {
	store, settings, ledger := newLedger(t)
	authorID, postID := seedAuthorWithPost(store, true, models.PostStatusPublished)

	for i := 0; i < 10; i++ {
		require.NoError(t, ledger.RecordQualifyingView(context.Background(), postID))
	}

	_, err := settings.Update(context.Background(), models.SettingsUpdateRequest{
		BaseEarningPerView: floatPtr(0.05),
	})
	require.NoError(t, err)

	author, err := store.GetUser(context.Background(), authorID)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, author.VirtualEarnings, 1e-9,
		"earned balance must keep the historical rate")

	// New views earn at the new rate.
	require.NoError(t, ledger.RecordQualifyingView(context.Background(), postID))
	author, err = store.GetUser(context.Background(), authorID)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, author.VirtualEarnings, 1e-9)
}

func TestZeroRateCountsViewsWithoutCredit(t *testing.T) {
	store, settings, ledger := newLedger(t)
	authorID, postID := seedAuthorWithPost(store, true, models.PostStatusPublished)

	_, err := settings.Update(context.Background(), models.SettingsUpdateRequest{
		BaseEarningPerView: floatPtr(0),
	})
	require.NoError(t, err)

	require.NoError(t, ledger.RecordQualifyingView(context.Background(), postID))

	post, err := store.GetPost(context.Background(), postID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, post.Views)

	author, err := store.GetUser(context.Background(), authorID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, author.VirtualEarnings)
}

func TestViewApplicationIsAllOrNothing(t *testing.T) {
	store, _, _ := newLedger(t)
	_, postID := seedAuthorWithPost(store, true, models.PostStatusPublished)
	ctx := context.Background()

	// A credit aimed at a missing author must fail without counting the
	// view; a half-applied view would break the audit trail.
	err := store.ApplyQualifyingView(ctx, postID, primitive.NewObjectID(), 0.05)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	post, err := store.GetPost(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, post.Views, "failed credit must not leave a counted view behind")
}

func TestAuditTrailAccountsForEveryCredit(t *testing.T) {
	store, settings, ledger := newLedger(t)
	authorID, postID := seedAuthorWithPost(store, true, models.PostStatusPublished)
	withdrawals := NewWithdrawalService(store, settings)
	ctx := context.Background()

	_, err := settings.Update(ctx, models.SettingsUpdateRequest{BaseEarningPerView: floatPtr(1)})
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		require.NoError(t, ledger.RecordQualifyingView(ctx, postID))
	}
	store.SetUserPaymentDetails(authorID, &models.PaymentDetails{Method: "upi", UpiID: "author@upi"})
	request, err := withdrawals.RequestWithdrawal(ctx, authorID, 10)
	require.NoError(t, err)

	history, err := store.ListEarningsByUser(ctx, authorID)
	require.NoError(t, err)
	var credited float64
	for _, tx := range history {
		credited += tx.Amount
	}

	author, err := store.GetUser(ctx, authorID)
	require.NoError(t, err)
	assert.InDelta(t, author.VirtualEarnings+request.Amount, credited, 1e-9,
		"audit rows must account for every credit the balance received")
}

func TestComputeEarningsIsPureDisplayMath(t *testing.T) {
	assert.Equal(t, 0.0, ComputeEarnings(0, 0.01))
	assert.InDelta(t, 0.10, ComputeEarnings(10, 0.01), 1e-9)
	assert.InDelta(t, 2.50, ComputeEarnings(50, 0.05), 1e-9)
}
