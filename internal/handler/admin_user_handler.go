package handler

import (
	"net/http"

	"oifit/internal/config"
	"oifit/internal/middleware"
	"oifit/internal/repository"
	"oifit/internal/usecase"
	"oifit/internal/validator"

	"github.com/labstack/echo/v4"
)

// /admin/users と /admin/sales
type AdminUserHandler struct {
	users *usecase.UserUsecase
	sales *usecase.SalesUsecase
}

func NewAdminUserHandler(users *usecase.UserUsecase, sales *usecase.SalesUsecase) *AdminUserHandler {
	return &AdminUserHandler{users: users, sales: sales}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, users middleware.UserProvisioner) {
	// /admin 配下は全部「JWT必須 + 有効なユーザー + ADMIN限定」
	admin := e.Group(
		"/admin",
		middleware.AuthJWT(cfg),
		middleware.UserGuard(users),
		middleware.AdminRoleGuard(),
	)

	admin.GET("/users", h.list)
	admin.PATCH("/users/:id", withUser(h.update))
	admin.GET("/sales", h.stats)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, limit, ok := pageParams(c, 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}

	out, err := h.users.List(c.Request().Context(), repository.UserListFilter{
		Page:  page,
		Limit: limit,
		Q:     c.QueryParam("q"),
		Role:  c.QueryParam("role"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) update(c echo.Context, adminID string) error {
	var req validator.UserEditForm
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.users.AdminUpdate(c.Request().Context(), adminID, c.Param("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) stats(c echo.Context) error {
	out, err := h.sales.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
