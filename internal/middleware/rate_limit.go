package middleware

import (
	"net/http"
	"time"

	"oifit/internal/config"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// 決済の作成はユーザーごとに制限する（AuthJWTの後に置く）
func PaymentRateLimiter(cfg config.Config) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Skipper: echomw.DefaultSkipper,
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(
			echomw.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.PaymentRatePerSec),
				Burst:     cfg.PaymentRateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if id, ok := c.Get(CtxUserIDKey).(string); ok && id != "" {
				return id, nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, errorJSON("rate limit exceeded"))
		},
	})
}
