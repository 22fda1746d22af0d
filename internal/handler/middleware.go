package handler

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apperrors "github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/errors"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/model"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/service"
)

const currentUserKey = "current_user"

// SubjectFromContext extracts the token subject placed in the context by
// the JWT middleware.
func SubjectFromContext(c echo.Context) (string, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return "", false
	}
	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", false
	}
	return subject, true
}

// CurrentUserFromContext returns the requester loaded by RequireAdmin.
func CurrentUserFromContext(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(currentUserKey).(*model.User)
	return user, ok
}

// RequireAdmin resolves the token subject to an account and rejects
// non-admins. The requester is stashed in the context for handlers that
// need it.
func RequireAdmin(users service.AdminService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, ok := SubjectFromContext(c)
			if !ok {
				return domainError(apperrors.ErrInvalidToken)
			}

			user, err := users.GetUserByEmail(c.Request().Context(), subject)
			if err != nil {
				if errors.Is(err, apperrors.ErrUserNotFound) {
					return domainError(apperrors.ErrInvalidToken)
				}
				return domainError(err)
			}
			if !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: "admin access required",
					Code:  "ADMIN_REQUIRED",
				})
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}
