package handler

import (
	"net/http"

	"oifit/internal/config"
	"oifit/internal/middleware"
	"oifit/internal/usecase"
	"oifit/internal/validator"

	"github.com/labstack/echo/v4"
)

type InventoryUpdateRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// 商品の登録・編集・削除と在庫数の上書き
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, users middleware.UserProvisioner) {
	admin := e.Group("/admin", middleware.AuthJWT(cfg), middleware.UserGuard(users), middleware.AdminRoleGuard())

	admin.POST("/products", withUser(h.create))
	admin.PUT("/products/:id", withUser(h.update))
	admin.DELETE("/products/:id", withUser(h.remove))
	admin.PUT("/inventory/:product_id", withUser(h.setStock))
}

func (h *AdminProductHandler) create(c echo.Context, adminID string) error {
	var form validator.ProductForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, form)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) update(c echo.Context, adminID string) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var form validator.ProductForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, id, form); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminProductHandler) remove(c echo.Context, adminID string) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminProductHandler) setStock(c echo.Context, adminID string) error {
	id, ok := pathID(c, "product_id")
	if !ok {
		return nil
	}
	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.AdminUpdateInventory(c.Request().Context(), adminID, id, req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}
