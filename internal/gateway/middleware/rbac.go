package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizadmin-system/internal/database/models"
)

// RequireRole gates a route to principals whose role ranks at or above the
// minimum. Authorization failures are reported as 403, distinct from the
// 401 an unauthenticated request gets.
func RequireRole(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			return
		}

		userRank, ok := models.RoleRank[claims.Role]
		requiredRank, reqOK := models.RoleRank[minRole]
		if !ok || !reqOK || userRank < requiredRank {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "insufficient permissions",
			})
			return
		}

		c.Next()
	}
}
