// repositories/memory_store.go
package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/blogchain/mindly_backend/models"
)

// MemoryStore is an in-memory LedgerStore used by tests. A single mutex
// serializes the withdrawal step, giving it the same atomicity the mongo
// transaction provides.
type MemoryStore struct {
	mu          sync.Mutex
	users       map[primitive.ObjectID]*models.User
	posts       map[primitive.ObjectID]*models.Post
	withdrawals map[primitive.ObjectID]*models.WithdrawalRequest
	earnings    []models.EarningTransaction
	settings    *models.EarningsSettings
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[primitive.ObjectID]*models.User),
		posts:       make(map[primitive.ObjectID]*models.Post),
		withdrawals: make(map[primitive.ObjectID]*models.WithdrawalRequest),
	}
}

// AddUser seeds a user. Test helper, not part of LedgerStore.
func (s *MemoryStore) AddUser(user models.User) primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = &user
	return user.ID
}

// AddPost seeds a post. Test helper, not part of LedgerStore.
func (s *MemoryStore) AddPost(post models.Post) primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	s.posts[post.ID] = &post
	return post.ID
}

// SetPostStatus flips a post's status. Test helper.
func (s *MemoryStore) SetPostStatus(postID primitive.ObjectID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post, ok := s.posts[postID]; ok {
		post.Status = status
	}
}

// SetUserPaymentDetails replaces a user's payment details. Test helper.
func (s *MemoryStore) SetUserPaymentDetails(userID primitive.ObjectID, details *models.PaymentDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.PaymentDetails = details
	}
}

func (s *MemoryStore) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (s *MemoryStore) ApplyQualifyingView(ctx context.Context, postID, authorID primitive.ObjectID, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything before mutating anything so a failure never
	// leaves a half-applied view.
	post, ok := s.posts[postID]
	if !ok || post.Status != models.PostStatusPublished {
		return ErrNotFound
	}
	var user *models.User
	if amount > 0 {
		user, ok = s.users[authorID]
		if !ok {
			return ErrNotFound
		}
	}

	post.Views++
	if amount > 0 {
		user.VirtualEarnings += amount
		s.earnings = append(s.earnings, models.EarningTransaction{
			ID:        primitive.NewObjectID(),
			UserID:    authorID,
			PostID:    postID,
			Amount:    amount,
			Type:      "view_credit",
			CreatedAt: time.Now(),
		})
	}
	return nil
}

func (s *MemoryStore) GetSettings(ctx context.Context) (*models.EarningsSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return nil, ErrNotFound
	}
	copied := *s.settings
	return &copied, nil
}

func (s *MemoryStore) UpdateSettings(ctx context.Context, req models.SettingsUpdateRequest) (*models.EarningsSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		defaults := models.DefaultEarningsSettings()
		s.settings = &defaults
	}
	if req.BaseEarningPerView != nil {
		s.settings.BaseEarningPerView = *req.BaseEarningPerView
	}
	if req.MinimumWithdrawalAmount != nil {
		s.settings.MinimumWithdrawalAmount = *req.MinimumWithdrawalAmount
	}
	if req.MinimumViewDuration != nil {
		s.settings.MinimumViewDuration = *req.MinimumViewDuration
	}
	s.settings.UpdatedAt = time.Now()
	copied := *s.settings
	return &copied, nil
}

func (s *MemoryStore) CreateWithdrawal(ctx context.Context, userID primitive.ObjectID, amount float64, details models.PaymentDetails) (*models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if amount > user.VirtualEarnings {
		return nil, ErrInsufficientBalance
	}
	user.VirtualEarnings -= amount
	request := &models.WithdrawalRequest{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		Amount:         amount,
		Status:         models.WithdrawalStatusPending,
		PaymentDetails: details,
		RequestedAt:    time.Now(),
	}
	s.withdrawals[request.ID] = request
	copied := *request
	return &copied, nil
}

func (s *MemoryStore) GetWithdrawal(ctx context.Context, id primitive.ObjectID) (*models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.withdrawals[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (s *MemoryStore) UpdateWithdrawalStatus(ctx context.Context, id primitive.ObjectID, status string, adminID primitive.ObjectID, note string) (*models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.withdrawals[id]
	if !ok {
		return nil, ErrNotFound
	}
	request.Status = status
	request.AdminID = &adminID
	if note != "" {
		request.AdminNote = note
	}
	if models.TerminalWithdrawalStatus(status) {
		now := time.Now()
		request.ProcessedAt = &now
	}
	copied := *request
	return &copied, nil
}

func (s *MemoryStore) ListWithdrawalsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var requests []models.WithdrawalRequest
	for _, request := range s.withdrawals {
		if request.UserID == userID {
			requests = append(requests, *request)
		}
	}
	sortWithdrawals(requests)
	return requests, nil
}

func (s *MemoryStore) ListWithdrawalsByStatus(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var requests []models.WithdrawalRequest
	for _, request := range s.withdrawals {
		if status == "" || request.Status == status {
			requests = append(requests, *request)
		}
	}
	sortWithdrawals(requests)
	return requests, nil
}

// sortWithdrawals orders newest first, same as the mongo queries.
func sortWithdrawals(requests []models.WithdrawalRequest) {
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].RequestedAt.After(requests[j].RequestedAt)
	})
}

func (s *MemoryStore) ListEarningsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.EarningTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var transactions []models.EarningTransaction
	for _, tx := range s.earnings {
		if tx.UserID == userID {
			transactions = append(transactions, tx)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, nil
}
