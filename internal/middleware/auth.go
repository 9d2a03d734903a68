package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"promptstudio/internal/pkg/jwt"
	"promptstudio/internal/pkg/response"
)

// JWTAuth requires a valid "Bearer <token>" header and stores the caller id
// under "user_id".
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// GuestOnly redirects callers that already present a valid token.
// Requests without a usable token pass through.
func GuestOnly(jwtService *jwt.Service, redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if _, err := jwtService.ValidateToken(strings.TrimSpace(parts[1])); err == nil {
				c.Redirect(http.StatusFound, redirectTo)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
