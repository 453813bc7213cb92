package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/apperror"
	"tillbook/internal/domain/auth"
)

// RequireAuth guards mutating routes with a bearer token.
func RequireAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set("operator", claims.Subject)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	appErr := apperror.NewUnauthorized(message)
	c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
