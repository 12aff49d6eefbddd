package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/club-planner/internal/auth"
	"github.com/nekogravitycat/club-planner/internal/pkg/response"
)

// RequireAdmin ensures the authenticated user carries the admin role.
// It MUST be used after auth.AuthRequired middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := auth.GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
			return
		}

		if !actor.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse{Error: "forbidden: admin access required"})
			return
		}

		c.Next()
	}
}
