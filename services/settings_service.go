// services/settings_service.go
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/repositories"
)

// settingsCacheTTL bounds how stale a cached settings snapshot may be
// for readers other than the admin who just wrote it.
const settingsCacheTTL = 30 * time.Second

// SettingsService supplies the current earnings configuration to the
// ledger and withdrawal flows. Reads are served from a cached snapshot;
// updates invalidate the cache so the editing admin sees their own write.
type SettingsService struct {
	store repositories.LedgerStore

	mu        sync.RWMutex
	cached    *models.EarningsSettings
	fetchedAt time.Time
}

// NewSettingsService creates a settings provider over the store.
func NewSettingsService(store repositories.LedgerStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the current settings snapshot. A missing settings document
// is not an error; documented defaults are substituted so the ledger
// keeps operating on a fresh deployment.
func (s *SettingsService) Get(ctx context.Context) (models.EarningsSettings, error) {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.fetchedAt) < settingsCacheTTL {
		snapshot := *s.cached
		s.mu.RUnlock()
		return snapshot, nil
	}
	s.mu.RUnlock()

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			defaults := models.DefaultEarningsSettings()
			settings = &defaults
		} else {
			return models.EarningsSettings{}, err
		}
	}

	s.mu.Lock()
	s.cached = settings
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return *settings, nil
}

// ErrNegativeSetting rejects updates that would set a negative rate,
// threshold or duration.
var ErrNegativeSetting = errors.New("settings values must not be negative")

// Update merges the provided fields into the stored settings. Fields left
// nil are untouched.
func (s *SettingsService) Update(ctx context.Context, req models.SettingsUpdateRequest) (models.EarningsSettings, error) {
	if (req.BaseEarningPerView != nil && *req.BaseEarningPerView < 0) ||
		(req.MinimumWithdrawalAmount != nil && *req.MinimumWithdrawalAmount < 0) ||
		(req.MinimumViewDuration != nil && *req.MinimumViewDuration < 0) {
		return models.EarningsSettings{}, ErrNegativeSetting
	}

	settings, err := s.store.UpdateSettings(ctx, req)
	if err != nil {
		return models.EarningsSettings{}, err
	}

	s.mu.Lock()
	s.cached = settings
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return *settings, nil
}
