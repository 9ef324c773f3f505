package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CallerIdentityMiddleware extracts the caller's user ID resolved by the
// upstream auth gateway. Session resolution itself lives outside this service;
// the gateway forwards the authenticated identity in the X-Caller-ID header.
func CallerIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := c.GetHeader("X-Caller-ID")
		if callerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), callerIDKey, callerID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetCallerIDFromCtx retrieves the authenticated caller ID from the context.
// It returns the ID and a boolean indicating whether it was found.
func GetCallerIDFromCtx(ctx context.Context) (string, bool) {
	callerID, ok := ctx.Value(callerIDKey).(string)
	if !ok || callerID == "" {
		return "", false
	}
	return callerID, true
}
