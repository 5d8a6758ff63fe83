package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity extracts the caller's user id from the configured trusted header
// and stores it on the context. Authentication happens upstream; requests
// that arrive without a usable identity are rejected, because every store
// operation is scoped to a user.
func Identity(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(header)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing identity header"})
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid identity header"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}
