// services/earnings_service.go
package services

import (
	"context"
	"errors"
	"log"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/repositories"
)

// EarningsService turns qualifying post views into view counts and
// balance credits. The caller (the view-tracking endpoint) is responsible
// for session deduplication and the minimum-duration gate; this service
// is invoked at most once per qualifying view.
type EarningsService struct {
	store    repositories.LedgerStore
	settings *SettingsService
}

// NewEarningsService creates the earnings ledger.
func NewEarningsService(store repositories.LedgerStore, settings *SettingsService) *EarningsService {
	return &EarningsService{store: store, settings: settings}
}

// RecordQualifyingView increments the post's view counter and, when the
// author is monetization-approved and the current rate is positive,
// credits the author's balance at the rate in effect right now. Views on
// draft or missing posts are a no-op, not an error: a post unpublished
// mid-view must not crash the tracking pipeline.
func (s *EarningsService) RecordQualifyingView(ctx context.Context, postID primitive.ObjectID) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		log.Printf("record view: failed to load post %s: %v", postID.Hex(), err)
		return err
	}
	if post.Status != models.PostStatusPublished {
		return nil
	}

	author, err := s.store.GetUser(ctx, post.AuthorID)
	if err != nil {
		log.Printf("record view: failed to load author %s: %v", post.AuthorID.Hex(), err)
		return err
	}

	// Decide the credit up front; the store then applies counter,
	// balance and audit row as one durable unit.
	var credit float64
	if author.IsMonetizationApproved {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			log.Printf("record view: failed to load settings: %v", err)
			return err
		}
		if settings.BaseEarningPerView > 0 {
			credit = RoundCurrency(settings.BaseEarningPerView)
		}
	}

	if err := s.store.ApplyQualifyingView(ctx, postID, author.ID, credit); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// lost a race with an unpublish, drop the view
			return nil
		}
		log.Printf("record view: failed to apply view for post %s: %v", postID.Hex(), err)
		return err
	}
	return nil
}

// ComputeEarnings is the display-only estimate for a post card:
// current views times the current rate. It is not the authoritative
// balance. The stored balance keeps the rate that was in effect when
// each view was credited, and must never be recomputed from the live
// rate.
func ComputeEarnings(views int64, rate float64) float64 {
	return RoundCurrency(float64(views) * rate)
}

// RoundCurrency rounds to two decimal places at the bookkeeping
// boundary.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
