package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"voiceguard-backend/internal/analysis"
	"voiceguard-backend/internal/api"
	"voiceguard-backend/internal/auth"
	"voiceguard-backend/internal/config"
	"voiceguard-backend/internal/database"
)

func main() {
	cfg := config.Load()

	// Initialize database
	log.Printf("Initializing database at %s", cfg.DBPath)
	if err := database.Open(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	authSvc := auth.NewService(tokens)
	gateway := analysis.NewGateway(cfg)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	api.RegisterRoutes(e, authSvc, tokens, gateway)

	log.Printf("Starting voiceguard backend on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
