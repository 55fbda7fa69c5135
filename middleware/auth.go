package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/utils"
)

const AdminSessionCookie = "admin_session"

// AuthMiddleware accepts a bearer token whose subject is the end user's uid.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			abortUnauthorized(c, "Invalid token format")
			return
		}

		claims, err := utils.ParseToken(secret, token)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(string(utils.UserContextKey), claims)
		c.Next()
	}
}

// AdminAuthMiddleware accepts the admin session cookie, or the same token as a bearer header.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := AdminClaims(c, secret)
		if !ok {
			abortUnauthorized(c, "Unauthorized")
			return
		}
		c.Set(string(utils.UserContextKey), claims)
		c.Next()
	}
}

// AdminClaims reports the admin session carried by the request, if any.
func AdminClaims(c *gin.Context, secret string) (*utils.UserClaims, bool) {
	token, err := c.Cookie(AdminSessionCookie)
	if err != nil || token == "" {
		var ok bool
		token, ok = bearerToken(c.GetHeader("Authorization"))
		if !ok {
			return nil, false
		}
	}
	claims, err := utils.ParseToken(secret, token)
	if err != nil || claims.Role != utils.RoleAdmin {
		return nil, false
	}
	return claims, true
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg, "code": "unauthorized"})
}
