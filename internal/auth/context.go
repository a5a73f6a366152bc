package auth

import (
	"github.com/gin-gonic/gin"
)

const actorKey = "auth.actor"

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID   string
	Username string
	Role     string
}

func SetActor(c *gin.Context, a *Actor) {
	c.Set(actorKey, a)
}

// GetActor returns the actor stored by RequireSession, or nil.
func GetActor(c *gin.Context) *Actor {
	if val, ok := c.Get(actorKey); ok {
		if a, ok := val.(*Actor); ok {
			return a
		}
	}
	return nil
}

// GetUserID returns the actor id, or "" for anonymous requests.
func GetUserID(c *gin.Context) string {
	if a := GetActor(c); a != nil {
		return a.UserID
	}
	return ""
}
