package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/blogchain/mindly_backend/controllers"
	"github.com/blogchain/mindly_backend/middleware"
)

// RegisterAdminRoutes sets up all admin-related routes
func RegisterAdminRoutes(e *echo.Echo, adminController *controllers.AdminController) {
	// Admin routes group
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType("admin"))

	// User management routes
	admin.GET("/users", adminController.GetUsers)
	admin.PUT("/users/:id/monetization", adminController.SetMonetizationApproval)

	// Withdrawal processing routes
	admin.GET("/withdrawals", adminController.GetWithdrawals)
	admin.PUT("/withdrawals/:id/status", adminController.UpdateWithdrawalStatus)

	// Earnings configuration routes
	admin.GET("/settings", adminController.GetSettings)
	admin.PUT("/settings", adminController.UpdateSettings)

	// Dashboard totals
	admin.GET("/dashboard", adminController.GetDashboard)
}
