package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/occupancy")
	group.Use(authMiddleware)
	{
		group.GET("/day", h.Day)
		group.GET("/week", h.Week)
	}
}
