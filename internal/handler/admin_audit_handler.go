package handler

import (
	"net/http"

	"oifit/internal/config"
	"oifit/internal/middleware"
	"oifit/internal/usecase"

	"github.com/labstack/echo/v4"
)

// GET /admin/audit-logs
type AdminAuditHandler struct {
	uc *usecase.AuditUsecase
}

func NewAdminAuditHandler(uc *usecase.AuditUsecase) *AdminAuditHandler {
	return &AdminAuditHandler{uc: uc}
}

func (h *AdminAuditHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, users middleware.UserProvisioner) {
	admin := e.Group("/admin", middleware.AuthJWT(cfg), middleware.UserGuard(users), middleware.AdminRoleGuard())
	admin.GET("/audit-logs", h.list)
}

func (h *AdminAuditHandler) list(c echo.Context) error {
	page, limit, ok := pageParams(c, 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}

	out, err := h.uc.List(c.Request().Context(), usecase.AuditListInput{
		Actor:        c.QueryParam("actor"),
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		From:         c.QueryParam("from"),
		To:           c.QueryParam("to"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
