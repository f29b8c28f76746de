package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/contact-finder/internal/auth"
)

// JWT validates bearer tokens and stores the operator claims in the request context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return deny(c, http.StatusUnauthorized, "missing authorization header")
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return deny(c, http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := manager.ParseToken(strings.TrimSpace(token))
			if err != nil {
				return deny(c, http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextKeyOperatorEmail, claims.Email)
			c.Set(ContextKeyOperatorRole, claims.Role)

			return next(c)
		}
	}
}

// RequireRole admits operators whose token carries one of roles. It must run
// after JWT.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyOperatorRole).(string)
			switch {
			case role == "":
				return deny(c, http.StatusForbidden, "missing role")
			case !slices.Contains(roles, role):
				return deny(c, http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
