package handler

import (
	"net/http"

	"oifit/internal/config"
	"oifit/internal/middleware"
	"oifit/internal/usecase"
	"oifit/internal/validator"

	"github.com/labstack/echo/v4"
)

// 住所帳（一覧・登録・削除）
type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

func (h *AddressHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, users middleware.UserProvisioner) {
	g := e.Group("/addresses", middleware.AuthJWT(cfg), middleware.UserGuard(users))
	g.GET("", withUser(h.list))
	g.POST("", withUser(h.create))
	g.DELETE("/:id", withUser(h.remove))
}

func (h *AddressHandler) list(c echo.Context, userID string) error {
	list, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AddressHandler) create(c echo.Context, userID string) error {
	var form validator.AddressForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	}

	created, err := h.uc.Create(c.Request().Context(), userID, form)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *AddressHandler) remove(c echo.Context, userID string) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	if err := h.uc.Delete(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
