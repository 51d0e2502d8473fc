package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"oifit/internal/domain/cart"
	"oifit/internal/domain/model"
	"oifit/internal/domain/pricing"
	"oifit/internal/infra/messaging"
	"oifit/internal/payment"
	repo "oifit/internal/repository"
	"oifit/internal/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// 冪等キー → 送信結果
type IdempotencyCache interface {
	Lookup(ctx context.Context, userID, key string) (string, bool, error)
	Remember(ctx context.Context, userID, key, value string) error
}

// webhookの重複排除
type EventDeduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// 支払い確定後にサーバー側のカートを空にする
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

type PaymentDeps struct {
	Tx        repo.TransactionManager
	Orders    repo.OrderRepository
	Products  repo.ProductRepository
	Addresses repo.AddressRepository
	Gateway   payment.Gateway
	Cache     IdempotencyCache
	Dedupe    EventDeduper
	Events    messaging.Publisher
	Carts     CartClearer
	Currency  string
}

type PaymentUsecase struct {
	deps PaymentDeps
	log  zerolog.Logger
}

func NewPaymentUsecase(deps PaymentDeps, log zerolog.Logger) *PaymentUsecase {
	if deps.Currency == "" {
		deps.Currency = "brl"
	}
	return &PaymentUsecase{deps: deps, log: log}
}

// クライアントから届く明細。name/priceは表示用で、金額計算には使わない
type SubmitOrderItem struct {
	ProductID int64            `json:"productId"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Quantity  int64            `json:"quantity"`
	Size      string           `json:"size"`
	Color     string           `json:"color"`
}

type SubmitOrderInput struct {
	Items          []SubmitOrderItem `json:"items"`
	CityName       string            `json:"cityName"`
	AddressID      *int64            `json:"addressId"`
	IdempotencyKey string            `json:"-"`
}

type SubmitOrderOutput struct {
	ClientSecret string `json:"clientSecret"`
	OrderID      int64  `json:"orderId"`
	AmountCents  int64  `json:"amount"`
	Total        string `json:"total"`
}

type PaymentStatusOutput struct {
	Status      payment.Outcome `json:"status"`
	Message     string          `json:"message,omitempty"`
	OrderID     int64           `json:"orderId"`
	OrderStatus string          `json:"orderStatus"`
}

// SubmitOrder re-prices the items from stored products, records a PENDING order
// and opens a payment authorization for the computed amount.
func (u *PaymentUsecase) SubmitOrder(ctx context.Context, userID string, in SubmitOrderInput) (SubmitOrderOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return SubmitOrderOutput{}, errUnauthorized
	}
	if len(in.Items) == 0 {
		return SubmitOrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return SubmitOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency key")
	}
	if key == "" {
		key = uuid.NewString()
	} else if out, ok := u.replay(ctx, userID, key); ok {
		return out, nil
	}

	//住所の指定があれば本人のものに限る。都市名は住所から補う
	var snapshot *model.ShippingAddress
	city := strings.TrimSpace(in.CityName)
	if in.AddressID != nil {
		a, err := findOwnedAddress(ctx, u.deps.Addresses, userID, *in.AddressID)
		if err != nil {
			return SubmitOrderOutput{}, err
		}
		s := a.Snapshot()
		snapshot = &s
		if city == "" {
			city = a.City
		}
	}

	items, lines, err := u.priceItems(ctx, in.Items)
	if err != nil {
		return SubmitOrderOutput{}, err
	}

	amount, err := pricing.Calculate(lines, city)
	if err != nil {
		return SubmitOrderOutput{}, linesError(err)
	}

	order := model.Order{
		UserID:          userID,
		Status:          model.OrderStatusPending,
		TotalPrice:      pricing.FromCents(amount),
		Freight:         pricing.Freight(city),
		CityName:        city,
		AmountCents:     amount,
		Currency:        u.deps.Currency,
		AddressID:       in.AddressID,
		ShippingAddress: snapshot,
		IdempotencyKey:  key,
	}

	err = u.deps.Tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		order.ID = id
		if err := r.OrderItems().Insert(ctx, id, items); err != nil {
			return err
		}
		return nil
	})
	if errors.Is(err, repo.ErrConflict) {
		//同時に同じキーで作られた
		if out, ok := u.replay(ctx, userID, key); ok {
			return out, nil
		}
		return SubmitOrderOutput{}, NewHTTPError(http.StatusConflict, "idempotency conflict")
	}
	if err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("create order")
		return SubmitOrderOutput{}, errDB
	}

	out, err := u.openIntent(ctx, order)
	if err != nil {
		return SubmitOrderOutput{}, err
	}

	u.publish(ctx, messaging.OrderEvent{
		Type:        messaging.EventOrderCreated,
		OrderID:     order.ID,
		UserID:      userID,
		Status:      string(model.OrderStatusPending),
		AmountCents: amount,
	})
	return out, nil
}

// 価格・在庫・サイズ/色を保存済みの商品で確認する
func (u *PaymentUsecase) priceItems(ctx context.Context, in []SubmitOrderItem) ([]model.OrderItem, []pricing.Line, error) {
	ids := make([]int64, 0, len(in))
	for _, it := range in {
		ids = append(ids, it.ProductID)
	}
	products, err := u.deps.Products.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, nil, errDB
	}

	var fields validator.Errors
	wanted := map[int64]int64{}
	var outOfStock []string
	items := make([]model.OrderItem, 0, len(in))
	lines := make([]pricing.Line, 0, len(in))

	for i, it := range in {
		name := fmt.Sprintf("items[%d]", i)
		p, ok := products[it.ProductID]
		if !ok {
			fields = append(fields, validator.Invalid(name+".productId", "product not available"))
			continue
		}
		if !p.HasSize(it.Size) {
			fields = append(fields, validator.Invalid(name+".size", "not offered"))
		}
		if !p.HasColor(it.Color) {
			fields = append(fields, validator.Invalid(name+".color", "not offered"))
		}
		if it.Quantity < 1 || it.Quantity > cart.MaxQuantity {
			fields = append(fields, validator.Invalid(name+".quantity", fmt.Sprintf("must be between 1 and %d", cart.MaxQuantity)))
			continue
		}
		//同じ商品の行は在庫に対して合算（足す前に比べるので桁あふれしない）
		if it.Quantity > p.Stock-wanted[p.ID] {
			outOfStock = append(outOfStock, p.Name)
		}
		wanted[p.ID] += it.Quantity

		lines = append(lines, pricing.Line{
			UnitPrice:       p.Price,
			DiscountPercent: p.Discount,
			Quantity:        it.Quantity,
		})
		items = append(items, model.OrderItem{
			ProductID:           p.ID,
			ProductNameSnapshot: p.Name,
			UnitPriceSnapshot:   p.Price,
			DiscountSnapshot:    p.Discount,
			Quantity:            it.Quantity,
			Size:                it.Size,
			Color:               it.Color,
		})
	}
	if len(fields) > 0 {
		return nil, nil, &HTTPError{Status: http.StatusBadRequest, Message: "validation error", Fields: fields}
	}

	if len(outOfStock) > 0 {
		return nil, nil, NewHTTPError(http.StatusConflict, "out of stock: "+outOfStock[0])
	}
	return items, lines, nil
}

// 決済を開いて注文に紐づける。Stripe側の冪等キーは注文単位
func (u *PaymentUsecase) openIntent(ctx context.Context, order model.Order) (SubmitOrderOutput, error) {
	intent, err := u.deps.Gateway.CreateIntent(ctx, payment.IntentRequest{
		AmountCents:    order.AmountCents,
		Currency:       order.Currency,
		IdempotencyKey: "order-" + strconv.FormatInt(order.ID, 10),
		Metadata: map[string]string{
			"order_id": strconv.FormatInt(order.ID, 10),
			"user_id":  order.UserID,
		},
	})
	if err != nil {
		u.log.Error().Err(err).Int64("order_id", order.ID).Int64("amount", order.AmountCents).Msg("create payment intent")
		return SubmitOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "payment processor error")
	}

	if err := u.deps.Orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		u.log.Error().Err(err).Int64("order_id", order.ID).Str("intent_id", intent.ID).Msg("attach payment intent")
		return SubmitOrderOutput{}, errDB
	}

	out := SubmitOrderOutput{
		ClientSecret: intent.ClientSecret,
		OrderID:      order.ID,
		AmountCents:  order.AmountCents,
		Total:        pricing.FormatBRL(order.AmountCents),
	}
	if u.deps.Cache != nil {
		if b, err := json.Marshal(out); err == nil {
			if err := u.deps.Cache.Remember(ctx, order.UserID, order.IdempotencyKey, string(b)); err != nil {
				u.log.Warn().Err(err).Int64("order_id", order.ID).Msg("cache idempotency key")
			}
		}
	}
	return out, nil
}

// 同じキーの送信は前回の結果を返す（Redis → DBの順）
func (u *PaymentUsecase) replay(ctx context.Context, userID, key string) (SubmitOrderOutput, bool) {
	if u.deps.Cache != nil {
		v, ok, err := u.deps.Cache.Lookup(ctx, userID, key)
		if err != nil {
			u.log.Warn().Err(err).Msg("idempotency cache lookup")
		}
		var out SubmitOrderOutput
		if ok && json.Unmarshal([]byte(v), &out) == nil && out.ClientSecret != "" {
			return out, true
		}
	}

	o, found, err := u.deps.Orders.FindByIdempotencyKey(ctx, userID, key)
	if err != nil || !found || o.Status != model.OrderStatusPending {
		return SubmitOrderOutput{}, false
	}

	//決済がまだ開けていない注文は開き直す
	if o.PaymentIntentID == nil {
		out, err := u.openIntent(ctx, o)
		return out, err == nil
	}
	intent, err := u.deps.Gateway.GetIntent(ctx, *o.PaymentIntentID)
	if err != nil {
		u.log.Error().Err(err).Int64("order_id", o.ID).Msg("replay payment intent")
		return SubmitOrderOutput{}, false
	}
	return SubmitOrderOutput{
		ClientSecret: intent.ClientSecret,
		OrderID:      o.ID,
		AmountCents:  o.AmountCents,
		Total:        pricing.FormatBRL(o.AmountCents),
	}, true
}

// PaymentStatus fetches the authoritative intent state. The browser's redirect
// status is never trusted on its own.
func (u *PaymentUsecase) PaymentStatus(ctx context.Context, userID, clientSecret string) (PaymentStatusOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return PaymentStatusOutput{}, errUnauthorized
	}
	intentID, ok := payment.IntentIDFromClientSecret(strings.TrimSpace(clientSecret))
	if !ok {
		return PaymentStatusOutput{}, NewHTTPError(http.StatusBadRequest, "invalid client secret")
	}

	o, err := u.deps.Orders.FindByPaymentIntentID(ctx, intentID)
	if errors.Is(err, repo.ErrNotFound) {
		return PaymentStatusOutput{}, errNotFound
	}
	if err != nil {
		return PaymentStatusOutput{}, errDB
	}
	if o.UserID != userID {
		//他人の注文は「存在しない扱い」にする
		return PaymentStatusOutput{}, errNotFound
	}

	intent, err := u.deps.Gateway.GetIntent(ctx, intentID)
	if err != nil {
		u.log.Error().Err(err).Str("intent_id", intentID).Msg("get payment intent")
		return PaymentStatusOutput{}, NewHTTPError(http.StatusInternalServerError, "payment processor error")
	}
	if intent.ClientSecret != clientSecret {
		return PaymentStatusOutput{}, errNotFound
	}

	outcome := payment.MapStatus(intent.Status)
	status := o.Status
	if outcome == payment.OutcomeSucceeded {
		paid, err := u.confirm(ctx, o, intent)
		if err != nil {
			return PaymentStatusOutput{}, err
		}
		if paid {
			status = model.OrderStatusPaid
		} else if fresh, err := u.deps.Orders.FindByID(ctx, o.ID); err == nil {
			status = fresh.Status
		}
	}

	msg := ""
	if outcome == payment.OutcomeFailed {
		msg = intent.LastError
	}
	return PaymentStatusOutput{
		Status:      outcome,
		Message:     msg,
		OrderID:     o.ID,
		OrderStatus: string(status),
	}, nil
}

// HandleWebhook verifies a processor event and applies it once.
func (u *PaymentUsecase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := u.deps.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		u.log.Warn().Err(err).Msg("webhook rejected")
		return NewHTTPError(http.StatusBadRequest, "invalid signature")
	}

	log := u.log.With().Str("event_id", ev.ID).Str("event_type", ev.Type).Str("intent_id", ev.Intent.ID).Logger()

	if u.deps.Dedupe != nil {
		first, err := u.deps.Dedupe.FirstSeen(ctx, ev.ID)
		if err != nil {
			log.Warn().Err(err).Msg("webhook dedupe unavailable")
		} else if !first {
			log.Debug().Msg("webhook already handled")
			return nil
		}
	}

	if err := u.applyEvent(ctx, ev, log); err != nil {
		if u.deps.Dedupe != nil {
			if ferr := u.deps.Dedupe.Forget(ctx, ev.ID); ferr != nil {
				log.Warn().Err(ferr).Msg("webhook dedupe forget")
			}
		}
		return err
	}
	return nil
}

func (u *PaymentUsecase) applyEvent(ctx context.Context, ev payment.WebhookEvent, log zerolog.Logger) error {
	switch ev.Type {
	case "payment_intent.succeeded":
		o, err := u.deps.Orders.FindByPaymentIntentID(ctx, ev.Intent.ID)
		if errors.Is(err, repo.ErrNotFound) {
			//別環境の決済など
			log.Warn().Msg("webhook for unknown order")
			return nil
		}
		if err != nil {
			return errDB
		}
		_, err = u.confirm(ctx, o, ev.Intent)
		return err
	case "payment_intent.payment_failed":
		//注文はPENDINGのまま。再試行できる
		log.Info().Str("reason", ev.Intent.LastError).Msg("payment failed")
	case "payment_intent.processing":
		log.Info().Msg("payment processing")
	default:
		log.Debug().Msg("webhook ignored")
	}
	return nil
}

// 金額が一致したときだけ支払い済みにする
func (u *PaymentUsecase) confirm(ctx context.Context, o model.Order, intent payment.Intent) (bool, error) {
	if intent.AmountCents != 0 && intent.AmountCents != o.AmountCents {
		u.log.Error().
			Int64("order_id", o.ID).
			Int64("order_amount", o.AmountCents).
			Int64("intent_amount", intent.AmountCents).
			Msg("payment amount mismatch")
		return false, nil
	}
	return u.MarkPaid(ctx, o.ID)
}

// MarkPaid moves a PENDING order to PAID and takes the stock. Calling it again
// for the same order is a no-op.
func (u *PaymentUsecase) MarkPaid(ctx context.Context, orderID int64) (bool, error) {
	var order model.Order
	paid := false

	err := u.deps.Tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		if err != nil {
			return errDB
		}
		order = o
		if o.Status != model.OrderStatusPending {
			return nil
		}

		ok, err := r.Orders().MarkPaid(ctx, orderID, now())
		if err != nil {
			return errDB
		}
		if !ok {
			//他で更新済み
			return nil
		}
		paid = true

		items, err := r.OrderItems().ByOrder(ctx, orderID)
		if err != nil {
			return errDB
		}
		for _, it := range items {
			taken, err := r.Inventory().Take(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return errDB
			}
			if !taken {
				//支払いは済んでいるので注文は通す。在庫は管理者が調整する
				u.log.Warn().Int64("order_id", orderID).Int64("product_id", it.ProductID).Int64("quantity", it.Quantity).Msg("insufficient stock for paid order")
				continue
			}
			if err := r.Inventory().Record(ctx, model.InventoryAdjustment{
				ProductID: it.ProductID,
				Delta:     -it.Quantity,
				Reason:    fmt.Sprintf("order #%d paid", orderID),
				CreatedAt: now(),
			}); err != nil {
				return errDB
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if !paid {
		return false, nil
	}

	u.log.Info().Int64("order_id", orderID).Int64("amount", order.AmountCents).Msg("order paid")
	u.publish(ctx, messaging.OrderEvent{
		Type:        messaging.EventOrderPaid,
		OrderID:     orderID,
		UserID:      order.UserID,
		Status:      string(model.OrderStatusPaid),
		PrevStatus:  string(model.OrderStatusPending),
		AmountCents: order.AmountCents,
	})
	if u.deps.Carts != nil {
		if err := u.deps.Carts.Clear(ctx, order.UserID); err != nil {
			u.log.Warn().Err(err).Int64("order_id", orderID).Msg("clear server cart")
		}
	}
	return true, nil
}

func (u *PaymentUsecase) publish(ctx context.Context, ev messaging.OrderEvent) {
	if u.deps.Events == nil {
		return
	}
	if err := u.deps.Events.Publish(ctx, ev); err != nil {
		u.log.Warn().Err(err).Str("type", ev.Type).Int64("order_id", ev.OrderID).Msg("publish order event")
	}
}

// 計算側の入力エラーを項目つきの400にする
func linesError(err error) error {
	var ve *pricing.ValidationError
	if errors.As(err, &ve) {
		field := ve.Field
		if ve.Index >= 0 {
			field = fmt.Sprintf("items[%d].%s", ve.Index, ve.Field)
		}
		return &HTTPError{
			Status:  http.StatusBadRequest,
			Message: "validation error",
			Fields:  validator.Errors{validator.Invalid(field, ve.Reason)},
		}
	}
	return NewHTTPError(http.StatusBadRequest, "validation error")
}
