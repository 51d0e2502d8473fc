package middleware

import (
	"context"
	"net/http"

	"oifit/internal/domain/model"
	"oifit/internal/usecase"

	"github.com/labstack/echo/v4"
)

// トークンの本人をDBのユーザーに対応づける
type UserProvisioner interface {
	Provision(ctx context.Context, c usecase.Claims) (model.User, error)
}

// AuthJWTの後に置く。初回アクセスでユーザー行を作り、
// 無効化されたユーザーは403、roleはDBの値をcontextへ入れる。
func UserGuard(users UserProvisioner) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_idを取得する
			userID, ok := c.Get(CtxUserIDKey).(string)
			if !ok || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			email, _ := c.Get(CtxUserEmailKey).(string)
			name, _ := c.Get(CtxUserNameKey).(string)

			user, err := users.Provision(c.Request().Context(), usecase.Claims{
				UserID: userID,
				Email:  email,
				Name:   name,
			})
			if err != nil {
				if he, ok := usecase.AsHTTPError(err); ok {
					return c.JSON(he.Status, errorJSON(he.Message))
				}
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			if !user.IsActive {
				return c.JSON(http.StatusForbidden, errorJSON("account disabled"))
			}

			c.Set(CtxUserRoleKey, string(user.Role))
			return next(c)
		}
	}
}
