package handler

import (
	"context"
	"net/http"

	"oifit/internal/config"
	"oifit/internal/middleware"
	"oifit/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ログインユーザーのカート（Redisに保存）
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, users middleware.UserProvisioner) {
	g := e.Group("/cart", middleware.AuthJWT(cfg), middleware.UserGuard(users))

	g.GET("", withUser(h.get))
	g.DELETE("", withUser(h.clear))
	g.GET("/quote", withUser(h.quote))
	g.POST("/items", withUser(mutateCart(h.uc.AddItem)))
	g.PATCH("/items", withUser(mutateCart(h.uc.SetQuantity)))
	g.DELETE("/items", withUser(mutateCart(h.uc.RemoveItem)))
}

// bodyをTにbindしてカート操作を1回行い、結果のカートを返す
func mutateCart[T any](op func(ctx context.Context, userID string, in T) (usecase.CartOutput, error)) func(echo.Context, string) error {
	return func(c echo.Context, userID string) error {
		var in T
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		}
		out, err := op(c.Request().Context(), userID, in)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (h *CartHandler) get(c echo.Context, userID string) error {
	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context, userID string) error {
	if err := h.uc.Clear(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "cleared"})
}

// GET /cart/quote?city=
func (h *CartHandler) quote(c echo.Context, userID string) error {
	out, err := h.uc.Quote(c.Request().Context(), userID, c.QueryParam("city"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
