package handler

import (
	"errors"
	"net/http"
	"strconv"

	"oifit/internal/middleware"
	"oifit/internal/usecase"
	"oifit/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields []validator.Field `json:"fields,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// HTTPErrorはそのまま、それ以外は500
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Fields: he.Fields})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// クエリのbind失敗は "invalid <param>" の400
func writeBindError(c echo.Context, err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + be.Field})
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
}

// page（default 1）とlimit
func pageParams(c echo.Context, defaultLimit int) (int, int, bool) {
	page, limit := 1, defaultLimit
	err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		BindError()
	return page, limit, err == nil
}

// AuthJWTが入れたsub
func getUserIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(string)
	return id, ok && id != ""
}

// パスの数値ID。不正なら400を書いてfalse
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

// ログイン必須のハンドラ
func withUser(fn func(c echo.Context, userID string) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		}
		return fn(c, userID)
	}
}
