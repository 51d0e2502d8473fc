package middleware

import (
	"net/http"

	"oifit/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// RequireRole lets the request through when the role set by UserGuard is one
// of roles. A missing role means UserGuard did not run: 401.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxUserRoleKey).(string)
			if role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if _, ok := allowed[model.Role(role)]; !ok {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
			return next(c)
		}
	}
}

func AdminRoleGuard() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin)
}
