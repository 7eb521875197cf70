package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/response"
)

// RequireRole lets the request through only when the caller holds one of
// roles. This is a coarse route gate; services check capabilities again.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if !slices.Contains(roles, claims.Role) {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireStaff is RequireRole for lecturers and admins.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(model.RoleLecturer, model.RoleAdmin)
}
