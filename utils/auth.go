// utils/auth.go
package utils

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/blogchain/mindly_backend/config"
	"github.com/blogchain/mindly_backend/middleware"
	"github.com/blogchain/mindly_backend/models"
)

// ValidateTokenResponse represents the response for token validation
type ValidateTokenResponse struct {
	Valid   bool         `json:"valid"`
	User    *models.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

// ValidateToken validates a JWT token and returns user information if
// valid. Used by the frontend to check session validity.
func ValidateToken(tokenString string, db *mongo.Client) (*ValidateTokenResponse, error) {
	if tokenString == "" {
		return &ValidateTokenResponse{
			Valid:   false,
			Message: "No token provided",
		}, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &middleware.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err != nil {
		return &ValidateTokenResponse{
			Valid:   false,
			Message: "Invalid token: " + err.Error(),
		}, nil
	}

	claims, ok := token.Claims.(*middleware.JwtCustomClaims)
	if !ok || !token.Valid {
		return &ValidateTokenResponse{
			Valid:   false,
			Message: "Token is not valid",
		}, nil
	}

	if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
		return &ValidateTokenResponse{
			Valid:   false,
			Message: "Token has expired",
		}, nil
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return &ValidateTokenResponse{
			Valid:   false,
			Message: "Invalid user ID in token",
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err = config.GetCollection(db, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return &ValidateTokenResponse{
			Valid:   false,
			Message: "User not found",
		}, nil
	}

	user.Password = ""
	return &ValidateTokenResponse{
		Valid:   true,
		User:    &user,
		Message: "Token is valid",
	}, nil
}
