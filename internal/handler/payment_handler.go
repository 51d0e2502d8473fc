package handler

import (
	"io"
	"net/http"

	"oifit/internal/config"
	"oifit/internal/middleware"
	"oifit/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	IdempotencyKeyHeader  = "X-Idempotency-Key"
	StripeSignatureHeader = "Stripe-Signature"

	// Stripeのイベントは64KBまで
	maxWebhookBody = 64 << 10
)

// /payment（注文送信・決済状態・webhook）
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, users middleware.UserProvisioner) {
	// webhookは署名で検証するのでJWTなし
	e.POST("/payment/webhook", h.webhook)

	g := e.Group("/payment", middleware.AuthJWT(cfg), middleware.UserGuard(users))
	g.POST("", withUser(h.submit), middleware.PaymentRateLimiter(cfg))
	g.GET("/status", withUser(h.status))
}

func (h *PaymentHandler) submit(c echo.Context, userID string) error {
	var req usecase.SubmitOrderInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	req.IdempotencyKey = c.Request().Header.Get(IdempotencyKeyHeader)

	out, err := h.uc.SubmitOrder(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// GET /payment/status?client_secret=...
func (h *PaymentHandler) status(c echo.Context, userID string) error {
	secret := c.QueryParam("client_secret")
	if secret == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "client_secret required"})
	}

	out, err := h.uc.PaymentStatus(c.Request().Context(), userID, secret)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.HandleWebhook(c.Request().Context(), payload, c.Request().Header.Get(StripeSignatureHeader)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "received"})
}
