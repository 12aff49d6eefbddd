package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/squads")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.POST("/:id/coaches", adminMiddleware, h.AddCoach)
	}
}
