package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/repositories"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestSettingsDefaultsOnEmptyStore(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewSettingsService(store)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.01, settings.BaseEarningPerView)
	assert.Equal(t, 10.0, settings.MinimumWithdrawalAmount)
	assert.Equal(t, 5, settings.MinimumViewDuration)
}

func TestSettingsPartialUpdateKeepsOtherFields(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewSettingsService(store)

	_, err := svc.Update(context.Background(), models.SettingsUpdateRequest{
		BaseEarningPerView: floatPtr(0.05),
	})
	require.NoError(t, err)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.05, settings.BaseEarningPerView)
	assert.Equal(t, 10.0, settings.MinimumWithdrawalAmount, "untouched field reset by partial update")
	assert.Equal(t, 5, settings.MinimumViewDuration, "untouched field reset by partial update")
}

func TestSettingsUpdateRejectsNegativeValues(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewSettingsService(store)

	_, err := svc.Update(context.Background(), models.SettingsUpdateRequest{
		BaseEarningPerView: floatPtr(-0.01),
	})
	assert.ErrorIs(t, err, ErrNegativeSetting)

	_, err = svc.Update(context.Background(), models.SettingsUpdateRequest{
		MinimumWithdrawalAmount: floatPtr(-5),
	})
	assert.ErrorIs(t, err, ErrNegativeSetting)

	_, err = svc.Update(context.Background(), models.SettingsUpdateRequest{
		MinimumViewDuration: intPtr(-1),
	})
	assert.ErrorIs(t, err, ErrNegativeSetting)
}

func TestSettingsUpdateIsReadImmediately(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewSettingsService(store)

	// Warm the cache, then write through it.
	_, err := svc.Get(context.Background())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), models.SettingsUpdateRequest{
		MinimumViewDuration: intPtr(0),
	})
	require.NoError(t, err)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, settings.MinimumViewDuration, "admin must read their own write, not the stale cache")
}
