package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/blogchain/mindly_backend/controllers"
	"github.com/blogchain/mindly_backend/middleware"
	"github.com/blogchain/mindly_backend/models"
	"github.com/blogchain/mindly_backend/websocket"
)

// RegisterUserRoutes sets up all user-related protected routes
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client, userController *controllers.UserController, postController *controllers.PostController, earningsController *controllers.EarningsController, withdrawalController *controllers.WithdrawalController, hub *websocket.Hub) {
	// Protected routes group
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.ActivityTracker(db))

	// User profile and management routes
	r.GET("/users/profile", userController.GetProfile)
	r.PUT("/users/profile", userController.UpdateProfile)
	r.PUT("/users/payment-details", userController.UpdatePaymentDetails)
	r.POST("/upload-profile-photo", userController.UploadProfilePhoto)
	r.GET("/users/notifications", userController.GetNotifications)

	// Authoring routes
	r.POST("/posts", postController.CreatePost)
	r.GET("/posts/mine", postController.GetMyPosts)
	r.PUT("/posts/:id", postController.UpdatePost)
	r.POST("/posts/:id/publish", postController.PublishPost)
	r.DELETE("/posts/:id", postController.DeletePost)

	// Engagement routes
	r.POST("/posts/:id/comments", postController.AddComment)
	r.POST("/posts/:id/like", postController.ToggleLike)

	// Earnings routes
	r.GET("/earnings", earningsController.GetSummary)
	r.GET("/earnings/history", earningsController.GetHistory)

	// Withdrawal routes
	r.POST("/withdrawals", withdrawalController.RequestWithdrawal)
	r.GET("/withdrawals", withdrawalController.GetMyWithdrawals)

	// WebSocket endpoint for balance and withdrawal notifications
	r.GET("/ws", func(c echo.Context) error {
		claims := middleware.GetUserFromToken(c)
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid user ID",
			})
		}
		return websocket.HandleWebSocket(c, hub, userID)
	})
}
