package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyUserID is the gin context key holding the caller's user ID.
const ContextKeyUserID = "user_id"

var errMissingUser = errors.New("missing user context")

// RequireUser resolves the caller identity from the X-User-ID header and
// stores it on the request context. Requests without a valid user ID are
// rejected. Upstream auth terminates at the gateway; this service only
// scopes data by the forwarded identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "X-User-ID header is required"},
			})
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "X-User-ID must be a UUID"},
			})
			return
		}
		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID returns the authenticated user ID set by RequireUser.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return uuid.Nil, errMissingUser
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errMissingUser
	}
	return userID, nil
}
