package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID  = "userID"
	ctxEmail   = "userEmail"
	ctxIsAdmin = "isAdmin"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID      string
	IsAdmin bool
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

// GetActor returns the authenticated actor. ok is false on unauthenticated requests.
func GetActor(c *gin.Context) (Actor, bool) {
	id := GetUserID(c)
	if id == "" {
		return Actor{}, false
	}
	return Actor{ID: id, IsAdmin: c.GetBool(ctxIsAdmin)}, true
}

// SetActor stores the actor in the gin context.
func SetActor(c *gin.Context, a Actor, email string) {
	c.Set(ctxUserID, a.ID)
	c.Set(ctxEmail, email)
	c.Set(ctxIsAdmin, a.IsAdmin)
}
