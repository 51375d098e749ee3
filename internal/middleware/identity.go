// Package middleware holds gin middleware shared by the API routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OwnerHeader carries the caller identity set by the upstream
// authenticator.
const OwnerHeader = "X-Owner-Id"

const ownerKey = "owner_id"

// RequireOwner rejects requests without a caller identity.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := strings.TrimSpace(c.GetHeader(OwnerHeader))
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "missing " + OwnerHeader + " header",
			})
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func OwnerID(c *gin.Context) string {
	return c.GetString(ownerKey)
}
