package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/blogchain/mindly_backend/controllers"
)

// RegisterAuthRoutes sets up all authentication and public routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController, postController *controllers.PostController, viewController *controllers.ViewController) {
	// Public authentication routes
	e.POST("/api/auth/signup", authController.Signup)
	e.POST("/api/auth/login", authController.Login)
	e.GET("/api/auth/validate-token", authController.ValidateToken)

	// Public reading routes
	e.GET("/api/posts", postController.GetPublishedPosts)
	e.GET("/api/posts/:id", postController.GetPost)

	// View tracking is public: readers are not required to sign in
	e.POST("/api/posts/:id/view", viewController.TrackView)
}
