package api

import (
	"github.com/labstack/echo/v4"

	"voiceguard-backend/internal/analysis"
	"voiceguard-backend/internal/auth"
)

// Package-level services, set once at route registration
var (
	authService  *auth.Service
	tokenManager *auth.TokenManager
	gateway      *analysis.Gateway
)

// RegisterRoutes sets up all routes. The analysis endpoints live at the
// server root; everything else is under /api.
func RegisterRoutes(e *echo.Echo, authSvc *auth.Service, tokens *auth.TokenManager, gw *analysis.Gateway) {
	authService = authSvc
	tokenManager = tokens
	gateway = gw

	apiGroup := e.Group("/api")

	// Health check (public)
	apiGroup.GET("/health", healthCheck)

	// Account routes
	users := apiGroup.Group("/users")
	users.GET("/get-users", listUsersHandler)
	users.POST("/add-user", addUserHandler)
	users.POST("/login", loginHandler, auth.LoginRateLimiter.Middleware())

	// Protected account routes
	users.GET("/me", getCurrentUser, auth.RequireAuth(tokens))
	users.PUT("/:id", updateUserHandler, auth.RequireAuth(tokens))

	// Analysis routes (paths fixed by the browser client)
	e.POST("/analyze", analyzeHandler)
	e.POST("/analyze-tempered", analyzeTemperedHandler)
	e.GET("/analyze/ws", analyzeWebSocketHandler)
}
