package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/services"
)

// viewDedupTTL is how long a session/post pair stays deduplicated.
const viewDedupTTL = 24 * time.Hour

// ViewController is the page-view instrumentation boundary. It enforces
// the minimum-duration gate and session deduplication before handing the
// view to the earnings ledger, which is invoked at most once per
// qualifying view.
type ViewController struct {
	Ledger   *services.EarningsService
	Settings *services.SettingsService
	Redis    *redis.Client
}

// NewViewController creates a new view controller. redisClient may be
// nil; dedup is then skipped (best effort).
func NewViewController(ledger *services.EarningsService, settings *services.SettingsService, redisClient *redis.Client) *ViewController {
	return &ViewController{Ledger: ledger, Settings: settings, Redis: redisClient}
}

// TrackView records a view of a post. Always responds 202: view-credit
// failures are logged and swallowed so the reading experience never
// blocks on bookkeeping.
func (vc *ViewController) TrackView(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	var req models.ViewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	settings, err := vc.Settings.Get(ctx)
	if err != nil {
		log.Printf("track view: failed to load settings: %v", err)
		return c.JSON(http.StatusAccepted, models.Response{
			Status:  http.StatusAccepted,
			Message: "View received",
		})
	}

	// Minimum-duration gate; 0 disables it.
	if settings.MinimumViewDuration > 0 && req.DwellSeconds < settings.MinimumViewDuration {
		return c.JSON(http.StatusAccepted, models.Response{
			Status:  http.StatusAccepted,
			Message: "View received",
		})
	}

	if !vc.markSessionView(ctx, postID, req.SessionID) {
		return c.JSON(http.StatusAccepted, models.Response{
			Status:  http.StatusAccepted,
			Message: "View received",
		})
	}

	if err := vc.Ledger.RecordQualifyingView(ctx, postID); err != nil {
		// already logged by the ledger; the reader never sees this
		log.Printf("track view: view for post %s not recorded: %v", postID.Hex(), err)
	}

	return c.JSON(http.StatusAccepted, models.Response{
		Status:  http.StatusAccepted,
		Message: "View received",
	})
}

// markSessionView returns true when this session has not yet counted a
// view for the post. Without Redis every view passes through; session
// dedup is a best-effort gate, the ledger itself does not deduplicate.
func (vc *ViewController) markSessionView(ctx context.Context, postID primitive.ObjectID, sessionID string) bool {
	if vc.Redis == nil {
		return true
	}
	if sessionID == "" {
		// no session id means no dedup key; still tag the attempt so
		// repeated anonymous posts don't collapse onto one key
		sessionID = uuid.NewString()
	}

	key := fmt.Sprintf("view:%s:%s", postID.Hex(), sessionID)
	ok, err := vc.Redis.SetNX(ctx, key, 1, viewDedupTTL).Result()
	if err != nil {
		log.Printf("track view: redis dedup unavailable: %v", err)
		return true
	}
	return ok
}
