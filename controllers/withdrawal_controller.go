package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/blogchain/mindly_backend/middleware"
	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/repositories"
	"github.com/blogchain/mindly_backend/services"
	"github.com/blogchain/mindly_backend/websocket"
)

// WithdrawalController lets authors convert balance into withdrawal
// requests. Failures here are always surfaced synchronously: virtual
// currency is at stake and silent failure would mislead the user.
type WithdrawalController struct {
	Withdrawals *services.WithdrawalService
	Hub         *websocket.Hub
}

// NewWithdrawalController creates a new withdrawal controller
func NewWithdrawalController(withdrawals *services.WithdrawalService, hub *websocket.Hub) *WithdrawalController {
	return &WithdrawalController{Withdrawals: withdrawals, Hub: hub}
}

// RequestWithdrawal validates and atomically creates a withdrawal
func (wc *WithdrawalController) RequestWithdrawal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	var req models.WithdrawalCreateRequest
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

	request, err := wc.Withdrawals.RequestWithdrawal(ctx, userID, req.Amount)
	if err != nil {
		return wc.withdrawalError(c, err)
	}

	if wc.Hub != nil {
		wc.Hub.SendToUser(userID, websocket.Notification{
			Type:    websocket.NotificationTypeBalanceUpdate,
			Message: "Withdrawal request created",
			Data:    request,
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Withdrawal request created successfully",
		Data:    request,
	})
}

// withdrawalError maps service errors to the specific user-facing
// message for each unmet precondition
func (wc *WithdrawalController) withdrawalError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrBelowMinimum),
		errors.Is(err, services.ErrPaymentDetailsIncomplete):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	case errors.Is(err, repositories.ErrInsufficientBalance):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Insufficient balance",
		})
	case errors.Is(err, services.ErrTryAgain):
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save withdrawal request",
		})
	}
}

// GetMyWithdrawals lists the authenticated user's requests, newest first
func (wc *WithdrawalController) GetMyWithdrawals(c echo.Context) error {
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

	requests, err := wc.Withdrawals.ListForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch withdrawal history",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal history retrieved successfully",
		Data:    requests,
	})
}
