package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instituto-admin-api/internal/models"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
	"github.com/noah-isme/instituto-admin-api/pkg/response"
)

// RequireRole lets a request through only when the JWT claims carry
// exactly role. It must run after JWT.
func RequireRole(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if claims.Role != role {
			response.Abort(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
