package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/zkauth/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, logger *slog.Logger, version string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	// Create handlers
	handlers := NewAuthHandlers(authService)

	router.GET("/livez", Livez(time.Now(), version))

	// Auth routes
	auth := router.Group("/auth")
	auth.Use(NoCache())
	{
		auth.GET("/params", handlers.Params)
		auth.POST("/register", handlers.Register)
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/verify", handlers.Verify)
	}

	return router
}
