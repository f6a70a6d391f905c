package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// callerKey is the Gin context key holding the caller identity.
const callerKey = "caller_id"

// userIDHeader carries the authenticated caller identity, set by the
// upstream gateway. Authentication itself happens there, not here.
const userIDHeader = "X-User-ID"

// Identity returns a middleware that extracts the caller identity and
// rejects requests without one.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := strings.TrimSpace(c.GetHeader(userIDHeader))
		if callerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + userIDHeader + " header",
			})
			return
		}
		c.Set(callerKey, callerID)
		c.Next()
	}
}

// CallerID returns the caller identity set by the Identity middleware.
func CallerID(c *gin.Context) string {
	return c.GetString(callerKey)
}
