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

	"github.com/blogchain/mindly_backend/config"
	"github.com/blogchain/mindly_backend/middleware"
	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/utils"
)

// UserController handles profile and payout-destination management
type UserController struct {
	DB *mongo.Client
}

// NewUserController creates a new user controller
func NewUserController(db *mongo.Client) *UserController {
	return &UserController{DB: db}
}

// GetProfile returns the authenticated user's profile
func (uc *UserController) GetProfile(c echo.Context) error {
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

	collection := config.GetCollection(uc.DB, "users")

	var user models.User
	if err := collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}

// UpdateProfile updates name, bio and FCM token
func (uc *UserController) UpdateProfile(c echo.Context) error {
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

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.FullName != "" {
		set["fullName"] = req.FullName
	}
	if req.Bio != "" {
		set["bio"] = req.Bio
	}
	if req.FCMToken != "" {
		set["fcmToken"] = req.FCMToken
	}

	collection := config.GetCollection(uc.DB, "users")
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update profile",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile updated successfully",
	})
}

// UpdatePaymentDetails replaces the active payout destination. Note this
// never touches already-created withdrawal requests; those carry their
// own snapshot.
func (uc *UserController) UpdatePaymentDetails(c echo.Context) error {
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

	var req models.UpdatePaymentDetailsRequest
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

	details := models.PaymentDetails{
		Method:        req.Method,
		Country:       req.Country,
		UpiID:         req.UpiID,
		AccountHolder: req.AccountHolder,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		IFSCCode:      req.IFSCCode,
		PaypalEmail:   req.PaypalEmail,
	}
	if !details.Complete() {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Payment details incomplete for the selected method",
		})
	}

	collection := config.GetCollection(uc.DB, "users")
	update := bson.M{"$set": bson.M{
		"paymentDetails": details,
		"updatedAt":      time.Now(),
	}}
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update payment details",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment details updated successfully",
	})
}

// UploadProfilePhoto stores a resized avatar and saves its URL on the
// profile
func (uc *UserController) UploadProfilePhoto(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID",
		})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No photo provided",
		})
	}

	photoURL, err := utils.SaveProfileImage(file, userID.Hex())
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to save photo: " + err.Error(),
		})
	}

	collection := config.GetCollection(uc.DB, "users")
	update := bson.M{"$set": bson.M{
		"profilePic": photoURL,
		"updatedAt":  time.Now(),
	}}
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update profile photo",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile photo updated successfully",
		Data:    map[string]string{"profilePic": photoURL},
	})
}

// GetNotifications returns the user's in-app notifications, newest first
func (uc *UserController) GetNotifications(c echo.Context) error {
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

	collection := config.GetCollection(uc.DB, "notifications")
	cursor, err := collection.Find(ctx, bson.M{"userId": userID},
		&options.FindOptions{Sort: bson.M{"createdAt": -1}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch notifications",
		})
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode notifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved successfully",
		Data:    notifications,
	})
}
