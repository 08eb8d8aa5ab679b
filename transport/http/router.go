package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portcullis-gate/portcullis/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, expectedDomain string, sessionTTL time.Duration, secureCookie bool) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService, expectedDomain, sessionTTL, secureCookie)

	// Auth routes
	api := router.Group("/api")
	{
		api.GET("/nonce", handlers.Nonce)
		api.POST("/verify", handlers.Verify)
		api.GET("/me", handlers.Me)
		api.GET("/logout", handlers.Logout)
	}

	// Protected routes
	gated := router.Group("/api/gated")
	gated.Use(SessionMiddleware(authService))
	{
		gated.GET("", handlers.Gated)
	}

	return router
}
