package payment

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

type intentClient interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type balanceClient interface {
	Get(params *stripe.BalanceParams) (*stripe.Balance, error)
}

// Stripe実装
type StripeGateway struct {
	intents       intentClient
	balance       balanceClient
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	sc := client.New(secretKey, nil)
	return &StripeGateway{
		intents:       sc.PaymentIntents,
		balance:       sc.Balance,
		webhookSecret: webhookSecret,
	}
}

// 分割払い（parcelamento）を有効にして作成
func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		PaymentMethodOptions: &stripe.PaymentIntentPaymentMethodOptionsParams{
			Card: &stripe.PaymentIntentPaymentMethodOptionsCardParams{
				Installments: &stripe.PaymentIntentPaymentMethodOptionsCardInstallmentsParams{
					Enabled: stripe.Bool(true),
				},
			},
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		return Intent{}, &ProcessorError{Op: "create intent", Err: err}
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(id, params)
	if err != nil {
		return Intent{}, &ProcessorError{Op: "get intent", Err: err}
	}
	return toIntent(pi), nil
}

// 署名を検証してイベントを返す。payment_intent.* 以外はIntentが空。
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookEvent{}, err
	}

	out := WebhookEvent{ID: ev.ID, Type: string(ev.Type)}
	if strings.HasPrefix(out.Type, "payment_intent.") && ev.Data != nil {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return WebhookEvent{}, err
		}
		out.Intent = toIntent(&pi)
	}
	return out, nil
}

func (g *StripeGateway) Balance(ctx context.Context, currency string) (Balance, error) {
	params := &stripe.BalanceParams{}
	params.Context = ctx

	b, err := g.balance.Get(params)
	if err != nil {
		return Balance{}, &ProcessorError{Op: "balance", Err: err}
	}

	var out Balance
	for _, a := range b.Available {
		if strings.EqualFold(string(a.Currency), currency) {
			out.AvailableCents += a.Amount
		}
	}
	for _, a := range b.Pending {
		if strings.EqualFold(string(a.Currency), currency) {
			out.PendingCents += a.Amount
		}
	}
	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) Intent {
	out := Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
	if pi.LastPaymentError != nil {
		out.LastError = pi.LastPaymentError.Msg
	}
	return out
}
