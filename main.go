package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/blogchain/mindly_backend/config"
	"github.com/blogchain/mindly_backend/controllers"
	"github.com/blogchain/mindly_backend/middleware"
	"github.com/blogchain/mindly_backend/repositories"
	"github.com/blogchain/mindly_backend/routes"
	"github.com/blogchain/mindly_backend/security"
	"github.com/blogchain/mindly_backend/services"
	"github.com/blogchain/mindly_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize Firebase
	config.InitFirebase()

	// Connect to Redis
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	db := client.Database(config.DatabaseName())

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  true, // Set to false in production
		AllowEval:      false,
	}))
	e.Use(contentTypeCheck())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Mindly Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	e.Use(httpsRedirect())

	// Initialize the ledger store and services
	store := repositories.NewMongoStore(client, config.DatabaseName())
	settingsService := services.NewSettingsService(store)
	earningsService := services.NewEarningsService(store, settingsService)
	withdrawalService := services.NewWithdrawalService(store, settingsService)

	// Initialize controllers
	authController := controllers.NewAuthController(client)
	userController := controllers.NewUserController(client)
	postController := controllers.NewPostController(db, wsHub)
	viewController := controllers.NewViewController(earningsService, settingsService, redisClient)
	earningsController := controllers.NewEarningsController(db, settingsService)
	withdrawalController := controllers.NewWithdrawalController(withdrawalService, wsHub)
	adminController := controllers.NewAdminController(db, withdrawalService, settingsService, wsHub)

	// Register routes
	routes.RegisterAuthRoutes(e, authController, postController, viewController)
	routes.RegisterUserRoutes(e, client, userController, postController, earningsController, withdrawalController, wsHub)

	// Register admin routes AFTER general routes to avoid conflicts
	routes.RegisterAdminRoutes(e, adminController)

	// Start the inactive user checker in a goroutine
	go func() {
		for {
			middleware.MarkInactiveUsers(client, 30*time.Minute)
			time.Sleep(5 * time.Minute)
		}
	}()

	// Ensure uploads directory exists
	os.MkdirAll("uploads", 0755)
	os.MkdirAll("uploads/profiles", 0755)

	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(301, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}

// contentTypeCheck rejects body-carrying requests with unexpected
// content types before they reach any handler
func contentTypeCheck() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
				return next(c)
			}

			contentType := c.Request().Header.Get("Content-Type")
			if contentType == "" {
				return next(c)
			}
			if idx := strings.Index(contentType, ";"); idx > 0 {
				contentType = contentType[:idx]
			}
			if !security.ValidateContentType(strings.TrimSpace(contentType)) {
				return c.JSON(http.StatusUnsupportedMediaType, map[string]string{
					"message": "Unsupported content type",
				})
			}
			return next(c)
		}
	}
}
