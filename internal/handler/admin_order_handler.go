package handler

import (
	"net/http"
	"time"

	"oifit/internal/config"
	"oifit/internal/middleware"
	"oifit/internal/repository"
	"oifit/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

type DeliveryUpdateRequest struct {
	Delivery string `json:"delivery"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, users middleware.UserProvisioner) {
	admin := e.Group("/admin", middleware.AuthJWT(cfg), middleware.UserGuard(users), middleware.AdminRoleGuard())

	admin.GET("/orders", h.list)
	admin.PUT("/orders/:id/status", withUser(h.updateStatus))
	admin.PATCH("/orders/:id/delivery", withUser(h.updateDelivery))
}

// 空ならnil、不正ならok=false
func queryTime(c echo.Context, name string) (*time.Time, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	return usecase.ParseDateTimeRFC3339(v)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, limit, ok := pageParams(c, 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}

	f := repository.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	}
	if v := c.QueryParam("user_id"); v != "" {
		f.UserID = &v
	}
	if f.From, ok = queryTime(c, "from"); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	if f.To, ok = queryTime(c, "to"); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context, adminID string) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in := usecase.AdminUpdateOrderStatusInput{Status: req.Status}
	if err := h.uc.UpdateStatus(c.Request().Context(), adminID, id, in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminOrderHandler) updateDelivery(c echo.Context, adminID string) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var req DeliveryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in := usecase.AdminUpdateDeliveryInput{Delivery: req.Delivery}
	if err := h.uc.UpdateDelivery(c.Request().Context(), adminID, id, in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}
