package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/response"
	"github.com/stemsi/siakad-backend/internal/service"
)

// CheckSession rejects tokens whose session was ended by logout, a role
// change, or account deletion.
func CheckSession(authService *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := authService.ValidateSession(c.Request.Context(), claims); err != nil {
			if !errors.Is(err, service.ErrSessionInvalidated) {
				log.Error().Err(err).Int("user_id", claims.UserID).Msg("session lookup failed")
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
