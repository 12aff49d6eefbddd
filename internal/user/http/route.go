package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers login and profile routes.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware gin.HandlerFunc) {
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
	}

	g.GET("/me", authMiddleware, h.Me)
}
