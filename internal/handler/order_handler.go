package handler

import (
	"net/http"

	"oifit/internal/config"
	"oifit/internal/middleware"
	"oifit/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 自分の注文履歴
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, users middleware.UserProvisioner) {
	g := e.Group("/orders", middleware.AuthJWT(cfg), middleware.UserGuard(users))
	g.GET("", withUser(h.list))
	g.GET("/:id", withUser(h.detail))
}

func (h *OrderHandler) list(c echo.Context, userID string) error {
	page, limit, ok := pageParams(c, 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context, userID string) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
