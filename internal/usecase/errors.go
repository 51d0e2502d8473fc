package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"oifit/internal/validator"
)

type HTTPError struct {
	Status  int
	Message string
	// 入力エラーの項目
	Fields []validator.Field
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// フォームのエラー一覧を400にする
func validationError(err error) error {
	var fe validator.Errors
	if errors.As(err, &fe) {
		return &HTTPError{Status: http.StatusBadRequest, Message: "validation error", Fields: fe}
	}
	return NewHTTPError(http.StatusBadRequest, "validation error")
}

var (
	errUnauthorized = NewHTTPError(http.StatusUnauthorized, "unauthorized")
	errForbidden    = NewHTTPError(http.StatusForbidden, "forbidden")
	errNotFound     = NewHTTPError(http.StatusNotFound, "not found")
	errDB           = NewHTTPError(http.StatusInternalServerError, "db error")
)

// テストで時刻を固定する
var now = time.Now

// 監査ログ用の {"key":"value"}
func jsonString(key, value string) string {
	b, _ := json.Marshal(map[string]string{key: value})
	return string(b)
}
