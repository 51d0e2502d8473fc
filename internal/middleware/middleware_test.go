package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oifit/internal/config"
	"oifit/internal/domain/model"
	"oifit/internal/middleware"
	"oifit/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type provisionerMock struct{ mock.Mock }

func (m *provisionerMock) Provision(ctx context.Context, c usecase.Claims) (model.User, error) {
	args := m.Called(ctx, c)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

const secret = "test-secret"

func mustMakeJWT(t *testing.T, key string, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func supabaseClaims(sub string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":           sub,
		"email":         "ana@example.com",
		"role":          "authenticated",
		"user_metadata": map[string]interface{}{"full_name": "Ana Souza"},
		"iat":           time.Now().Unix(),
		"exp":           time.Now().Add(time.Hour).Unix(),
	}
}

func echoContext(c echo.Context) error {
	s := func(k string) string { v, _ := c.Get(k).(string); return v }
	return c.JSON(http.StatusOK, mwOKResponse{
		UserID: s(middleware.CtxUserIDKey),
		Email:  s(middleware.CtxUserEmailKey),
		Name:   s(middleware.CtxUserNameKey),
		Role:   s(middleware.CtxUserRoleKey),
	})
}

func runRequest(t *testing.T, e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var r T
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func TestAuthJWT_Rejections(t *testing.T) {
	cfg := config.Config{JWTSecret: secret}

	expired := supabaseClaims("u1")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noSub := supabaseClaims("")

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"bad scheme", "Token abc.def.ghi"},
		{"bad signature", "Bearer " + mustMakeJWT(t, "wrong-secret", supabaseClaims("u1"), jwt.SigningMethodHS256)},
		{"wrong alg", "Bearer " + mustMakeJWT(t, secret, supabaseClaims("u1"), jwt.SigningMethodHS512)},
		{"expired", "Bearer " + mustMakeJWT(t, secret, expired, jwt.SigningMethodHS256)},
		{"empty sub", "Bearer " + mustMakeJWT(t, secret, noSub, jwt.SigningMethodHS256)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", echoContext, middleware.AuthJWT(cfg))

			rec := runRequest(t, e, tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decode[mwErrorResponse](t, rec).Error)
		})
	}
}

func TestAuthJWT_Success_SetsContext(t *testing.T) {
	e := echo.New()
	e.GET("/protected", echoContext, middleware.AuthJWT(config.Config{JWTSecret: secret}))

	raw := mustMakeJWT(t, secret, supabaseClaims("0b4c1f7e-1111-2222-3333-444455556666"), jwt.SigningMethodHS256)
	rec := runRequest(t, e, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode[mwOKResponse](t, rec)
	assert.Equal(t, "0b4c1f7e-1111-2222-3333-444455556666", body.UserID)
	assert.Equal(t, "ana@example.com", body.Email)
	assert.Equal(t, "Ana Souza", body.Name)
	// roleはUserGuardが入れる（トークンのroleは使わない）
	assert.Equal(t, "", body.Role)
}

func TestUserGuard_SetsRoleFromDatabase(t *testing.T) {
	users := new(provisionerMock)
	users.On("Provision", mock.Anything, usecase.Claims{UserID: "u1", Email: "ana@example.com", Name: "Ana Souza"}).
		Return(model.User{ID: "u1", Role: model.RoleAdmin, IsActive: true}, nil)

	e := echo.New()
	e.GET("/protected", echoContext, middleware.AuthJWT(config.Config{JWTSecret: secret}), middleware.UserGuard(users))

	rec := runRequest(t, e, "Bearer "+mustMakeJWT(t, secret, supabaseClaims("u1"), jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ADMIN", decode[mwOKResponse](t, rec).Role)
	users.AssertExpectations(t)
}

func TestUserGuard_InactiveUserIsForbidden(t *testing.T) {
	users := new(provisionerMock)
	users.On("Provision", mock.Anything, mock.Anything).Return(model.User{ID: "u1", Role: model.RoleUser, IsActive: false}, nil)

	e := echo.New()
	e.GET("/protected", echoContext, middleware.AuthJWT(config.Config{JWTSecret: secret}), middleware.UserGuard(users))

	rec := runRequest(t, e, "Bearer "+mustMakeJWT(t, secret, supabaseClaims("u1"), jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "account disabled", decode[mwErrorResponse](t, rec).Error)
}

func TestUserGuard_ProvisionFailure(t *testing.T) {
	users := new(provisionerMock)
	users.On("Provision", mock.Anything, mock.Anything).Return(model.User{}, usecase.NewHTTPError(http.StatusInternalServerError, "db error"))

	e := echo.New()
	e.GET("/protected", echoContext, middleware.AuthJWT(config.Config{JWTSecret: secret}), middleware.UserGuard(users))

	rec := runRequest(t, e, "Bearer "+mustMakeJWT(t, secret, supabaseClaims("u1"), jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdminRoleGuard(t *testing.T) {
	cases := []struct {
		role string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"USER", http.StatusForbidden},
		{"ADMIN", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			e := echo.New()
			setRole := func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					if tc.role != "" {
						c.Set(middleware.CtxUserRoleKey, tc.role)
					}
					return next(c)
				}
			}
			e.GET("/protected", echoContext, setRole, middleware.AdminRoleGuard())

			rec := runRequest(t, e, "")
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
