package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blogchain/mindly_backend/middleware"
	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/repositories"
	"github.com/blogchain/mindly_backend/services"
	"github.com/blogchain/mindly_backend/utils"
	"github.com/blogchain/mindly_backend/websocket"
)

// AdminController operates the console: monetization approvals,
// withdrawal processing, settings and dashboard totals
type AdminController struct {
	DB          *mongo.Database
	Withdrawals *services.WithdrawalService
	Settings    *services.SettingsService
	Hub         *websocket.Hub
}

// NewAdminController creates a new admin controller
func NewAdminController(db *mongo.Database, withdrawals *services.WithdrawalService, settings *services.SettingsService, hub *websocket.Hub) *AdminController {
	return &AdminController{DB: db, Withdrawals: withdrawals, Settings: settings, Hub: hub}
}

// GetUsers lists accounts for the console
func (ac *AdminController) GetUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if c.QueryParam("monetized") == "true" {
		filter["isMonetizationApproved"] = true
	}

	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.M{"createdAt": -1})
	cursor, err := ac.DB.Collection("users").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch users",
		})
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode users",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Users retrieved successfully",
		Data:    users,
	})
}

// MonetizationRequest toggles an author's monetization approval
type MonetizationRequest struct {
	Approved bool `json:"approved"`
}

// SetMonetizationApproval flips the gate that lets an author's views
// generate credit. Approval is never retroactive: past unapproved views
// stay uncredited.
func (ac *AdminController) SetMonetizationApproval(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	var req MonetizationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	result, err := ac.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"isMonetizationApproved": req.Approved,
			"updatedAt":              time.Now(),
		}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update monetization approval",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	message := "Monetization disabled for user"
	if req.Approved {
		message = "Monetization approved for user"
		go utils.NotifyMonetizationApproved(ac.DB, userID)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
	})
}

// GetWithdrawals lists withdrawal requests, optionally filtered by
// status
func (ac *AdminController) GetWithdrawals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requests, err := ac.Withdrawals.ListByStatus(ctx, c.QueryParam("status"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch withdrawal requests",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal requests retrieved successfully",
		Data:    requests,
	})
}

// UpdateWithdrawalStatus moves a request through its lifecycle and
// notifies the owner
func (ac *AdminController) UpdateWithdrawalStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	adminID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid admin ID",
		})
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid withdrawal request ID",
		})
	}

	var req models.WithdrawalStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	request, err := ac.Withdrawals.UpdateStatus(ctx, requestID, req.Status, adminID, req.AdminNote)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Withdrawal request not found",
			})
		default:
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to update withdrawal status",
			})
		}
	}

	go func() {
		if err := utils.NotifyWithdrawalStatusChange(ac.DB, request); err != nil {
			log.Printf("Failed to notify user of withdrawal update: %v", err)
		}
	}()
	if ac.Hub != nil {
		ac.Hub.SendToUser(request.UserID, websocket.Notification{
			Type:    websocket.NotificationTypeWithdrawalUpdate,
			Message: "Withdrawal status updated",
			Data:    request,
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal status updated successfully",
		Data:    request,
	})
}

// GetSettings returns the current earnings configuration
func (ac *AdminController) GetSettings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	settings, err := ac.Settings.Get(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load settings",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Settings retrieved successfully",
		Data:    settings,
	})
}

// UpdateSettings merges the provided fields into the stored settings.
// Rate changes apply to future views only; accrued balances are never
// recalculated.
func (ac *AdminController) UpdateSettings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SettingsUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	settings, err := ac.Settings.Update(ctx, req)
	if err != nil {
		if errors.Is(err, services.ErrNegativeSetting) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update settings",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Settings updated successfully",
		Data:    settings,
	})
}

// GetDashboard returns ledger-wide totals for the console
func (ac *AdminController) GetDashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	totalCredited, err := ac.sumAmounts(ctx, "earning_transactions", bson.M{})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to compute totals",
		})
	}
	pendingAmount, err := ac.sumAmounts(ctx, "withdrawals", bson.M{"status": models.WithdrawalStatusPending})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to compute totals",
		})
	}
	totalPaid, err := ac.sumAmounts(ctx, "withdrawals", bson.M{"status": models.WithdrawalStatusCompleted})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to compute totals",
		})
	}

	pendingCount, err := ac.DB.Collection("withdrawals").CountDocuments(ctx,
		bson.M{"status": models.WithdrawalStatusPending})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to compute totals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard retrieved successfully",
		Data: map[string]interface{}{
			"totalCredited":      totalCredited,
			"pendingWithdrawals": pendingCount,
			"pendingAmount":      pendingAmount,
			"totalPaidOut":       totalPaid,
		},
	})
}

func (ac *AdminController) sumAmounts(ctx context.Context, collection string, match bson.M) (float64, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}},
	}
	cursor, err := ac.DB.Collection(collection).Aggregate(ctx, pipeline)
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
