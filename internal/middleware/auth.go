package middleware

import (
	"strings"

	"github.com/energy-data-api/internal/service"
	"github.com/energy-data-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// ContextKeySubject is the key for the authenticated email in gin context
const ContextKeySubject = "subject"

// AuthMiddleware verifies the bearer token and stores its subject in the
// request context. The token is stateless: any holder of a valid,
// unexpired token is the subject it names.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		// Check Bearer prefix
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		subject, err := authService.VerifyToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextKeySubject, subject)
		c.Next()
	}
}

// GetSubject gets the authenticated email from the gin context
func GetSubject(c *gin.Context) string {
	subject, exists := c.Get(ContextKeySubject)
	if !exists {
		return ""
	}
	return subject.(string)
}
