package middleware

import (
	"net/http"
	"strings"

	jwtsvc "cliptube/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const accessCookieName = "accessToken"

// JWTAuth validates the access token and puts user_id/username into the
// context. The token comes from the accessToken cookie or, failing that, a
// Bearer header. Access checks are stateless: the session store is not
// consulted, a revoked session keeps working until its access token expires.
func JWTAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Access token is required",
				},
			})
			return
		}

		claims, err := jwt.ValidateAccessToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid access token",
				},
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)

		c.Next()
	}
}

// OptionalJWTAuth sets the identity when a valid token is present and lets
// the request through anonymously otherwise. Used for channel profiles where
// is_subscribed depends on the viewer.
func OptionalJWTAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr != "" {
			if claims, err := jwt.ValidateAccessToken(tokenStr); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("username", claims.Username)
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(accessCookieName); err == nil && cookie != "" {
		return cookie
	}

	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
