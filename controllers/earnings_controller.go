package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blogchain/mindly_backend/middleware"
	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/services"
)

// EarningsController exposes the author's balance and per-post earnings
// views
type EarningsController struct {
	DB       *mongo.Database
	Settings *services.SettingsService
}

// NewEarningsController creates a new earnings controller
func NewEarningsController(db *mongo.Database, settings *services.SettingsService) *EarningsController {
	return &EarningsController{DB: db, Settings: settings}
}

// GetSummary returns the authoritative balance plus display-only live
// estimates per post. The estimates use the current rate against current
// view counts and are allowed to diverge from the stored balance, which
// froze the rate at credit time.
func (ec *EarningsController) GetSummary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	var user models.User
	if err := ec.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	settings, err := ec.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load settings",
		})
	}

	cursor, err := ec.DB.Collection("posts").Find(ctx,
		bson.M{"authorId": userID, "status": models.PostStatusPublished},
		&options.FindOptions{Sort: bson.M{"views": -1}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch posts",
		})
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode posts",
		})
	}

	summary := models.EarningsSummary{Balance: user.VirtualEarnings}
	for _, post := range posts {
		summary.Posts = append(summary.Posts, models.PostEarning{
			PostID:   post.ID,
			Title:    post.Title,
			Views:    post.Views,
			Estimate: services.ComputeEarnings(post.Views, settings.BaseEarningPerView),
		})
	}

	summary.TotalEarned, summary.TotalWithdraw, err = ec.lifetimeTotals(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to compute totals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Earnings summary retrieved successfully",
		Data:    summary,
	})
}

// lifetimeTotals sums all-time credits and all successfully created
// withdrawal amounts for the user
func (ec *EarningsController) lifetimeTotals(ctx context.Context, userID primitive.ObjectID) (float64, float64, error) {
	earned, err := ec.sumAmounts(ctx, "earning_transactions", bson.M{"userId": userID})
	if err != nil {
		return 0, 0, err
	}
	withdrawn, err := ec.sumAmounts(ctx, "withdrawals", bson.M{"userId": userID})
	if err != nil {
		return 0, 0, err
	}
	return earned, withdrawn, nil
}

func (ec *EarningsController) sumAmounts(ctx context.Context, collection string, match bson.M) (float64, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}},
	}
	cursor, err := ec.DB.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// GetHistory returns the author's credit history, newest first
func (ec *EarningsController) GetHistory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	cursor, err := ec.DB.Collection("earning_transactions").Find(ctx,
		bson.M{"userId": userID},
		&options.FindOptions{Sort: bson.M{"createdAt": -1}, Limit: int64Ptr(200)})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch earnings history",
		})
	}
	defer cursor.Close(ctx)

	var transactions []models.EarningTransaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode earnings history",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Earnings history retrieved successfully",
		Data:    transactions,
	})
}

func int64Ptr(v int64) *int64 { return &v }
