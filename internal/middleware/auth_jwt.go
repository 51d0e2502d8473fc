package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"oifit/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey    = "user_id"    // string（JWTのsub）
	CtxUserEmailKey = "user_email" // string
	CtxUserNameKey  = "user_name"  // string
	CtxUserRoleKey  = "user_role"  // string（UserGuardが入れる）
)

// Supabaseのアクセストークン
type supabaseClaims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (c supabaseClaims) displayName() string {
	if c.UserMetadata.Name != "" {
		return c.UserMetadata.Name
	}
	return c.UserMetadata.FullName
}

// "Bearer <token>" からtokenを取り出す
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func parseSupabaseToken(raw string, secret []byte) (*supabaseClaims, error) {
	claims := &supabaseClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("missing sub")
	}
	return claims, nil
}

// HS256のJWTを検証し、sub・email・表示名をcontextに入れる（expもここで見る）
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			claims, err := parseSupabaseToken(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, claims.Subject)
			c.Set(CtxUserEmailKey, claims.Email)
			c.Set(CtxUserNameKey, claims.displayName())
			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
