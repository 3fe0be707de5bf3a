package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	sysutils "bizadmin-system/internal/utils"
)

const (
	principalKey = "principal"
	tokenKey     = "token"
)

// JWTAuth validates the bearer token and stores the authenticated principal
// on the request context. revoked may be nil when logout revocation is
// disabled.
func JWTAuth(revoked func(c *gin.Context, token string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authorization header required",
			})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := sysutils.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			return
		}

		if revoked != nil && revoked(c, tokenStr) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "token has been revoked",
			})
			return
		}

		c.Set(principalKey, claims)
		c.Set(tokenKey, tokenStr)
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal set by JWTAuth.
func PrincipalFrom(c *gin.Context) (*sysutils.Claims, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*sysutils.Claims)
	return claims, ok
}

// TokenFrom returns the raw bearer token set by JWTAuth.
func TokenFrom(c *gin.Context) (string, bool) {
	value, exists := c.Get(tokenKey)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}
