package checkout

import (
	"context"
	"sync"

	"oifit/internal/domain/cart"
	"oifit/internal/payment"
	"oifit/internal/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// 保存済み住所の取得・登録
type AddressBook interface {
	List(ctx context.Context) ([]Address, error)
	Create(ctx context.Context, form validator.AddressForm) (Address, error)
}

type SubmitRequest struct {
	Items          []cart.LineItem
	CityName       string
	AddressID      int64
	IdempotencyKey string
}

// Order Submissionの結果
type PaymentHandle struct {
	ClientSecret string
	OrderID      int64
	AmountCents  int64
}

type OrderSubmitter interface {
	Submit(ctx context.Context, req SubmitRequest) (PaymentHandle, error)
}

// 決済状態の取得。messageはカード拒否などの文言。
type PaymentObserver interface {
	Observe(ctx context.Context, clientSecret string) (outcome payment.Outcome, message string, err error)
}

// 決済代行のフォームを出す
type PaymentForm interface {
	Show(ctx context.Context, clientSecret string) error
}

type CartClearer interface {
	Clear(ctx context.Context)
}

type Deps struct {
	Addresses AddressBook
	Orders    OrderSubmitter
	Payments  PaymentObserver
	Form      PaymentForm
	Cart      CartClearer
	// 冪等キーの生成（省略時はUUID）
	NewKey func() string
}

// Orchestrator runs Reduce and executes the effects it returns, feeding
// results back in as events. Effects run outside the lock, so a cart change
// may arrive while a submission is in flight.
type Orchestrator struct {
	mu      sync.Mutex
	session Session
	deps    Deps
	log     zerolog.Logger
	subs    []func(Session)
}

func New(deps Deps, log zerolog.Logger) *Orchestrator {
	if deps.NewKey == nil {
		deps.NewKey = uuid.NewString
	}
	return &Orchestrator{
		session: Session{State: StateIdle},
		deps:    deps,
		log:     log,
	}
}

func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// 状態が変わるたびに呼ばれる
func (o *Orchestrator) OnChange(fn func(Session)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subs = append(o.subs, fn)
}

// カートの変更をCartChangedとして流す
func (o *Orchestrator) WatchCart(ctx context.Context, store *cart.Store) func() {
	return store.Subscribe(func(snap cart.Snapshot) {
		o.Dispatch(ctx, CartChanged{Items: snap.Items})
	})
}

// Dispatch applies ev and every event produced by the resulting effects, then
// returns the settled session.
func (o *Orchestrator) Dispatch(ctx context.Context, ev Event) Session {
	queue := []Event{ev}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		for _, eff := range o.apply(next) {
			queue = append(queue, o.run(ctx, eff)...)
		}
	}
	return o.Session()
}

// 1イベント分の遷移を反映して購読者に知らせる
func (o *Orchestrator) apply(ev Event) []Effect {
	o.mu.Lock()
	s, effects := Reduce(o.session, ev)
	o.session = s
	subs := append([]func(Session){}, o.subs...)
	o.mu.Unlock()

	o.log.Debug().Str("state", string(s.State)).Int("generation", s.Generation).Msgf("checkout: %T", ev)
	for _, fn := range subs {
		fn(s)
	}
	return effects
}

func (o *Orchestrator) run(ctx context.Context, eff Effect) []Event {
	switch e := eff.(type) {
	case LoadAddresses:
		list, err := o.deps.Addresses.List(ctx)
		if err != nil {
			o.log.Warn().Err(err).Msg("checkout: address lookup failed")
			return []Event{AddressesFailed{Err: err}}
		}
		return []Event{AddressesLoaded{Addresses: list}}

	case SaveAddress:
		a, err := o.deps.Addresses.Create(ctx, e.Form)
		if err != nil {
			return []Event{AddressSaveFailed{Err: err}}
		}
		return []Event{AddressSaved{Address: a}}

	case SubmitOrder:
		o.apply(SubmissionSent{Generation: e.Generation})

		h, err := o.deps.Orders.Submit(ctx, SubmitRequest{
			Items:          e.Items,
			CityName:       e.CityName,
			AddressID:      e.AddressID,
			IdempotencyKey: o.deps.NewKey(),
		})
		if err != nil {
			o.log.Error().Err(err).Int("generation", e.Generation).Msg("checkout: order submission failed")
			return []Event{HandleFailed{Generation: e.Generation, Err: err}}
		}
		return []Event{HandleReady{
			Generation:   e.Generation,
			ClientSecret: h.ClientSecret,
			OrderID:      h.OrderID,
			AmountCents:  h.AmountCents,
		}}

	case ShowPaymentForm:
		if o.deps.Form == nil {
			return nil
		}
		if err := o.deps.Form.Show(ctx, e.ClientSecret); err != nil {
			o.log.Warn().Err(err).Msg("checkout: payment form")
		}
		return nil

	case ObserveStatus:
		outcome, msg, err := o.deps.Payments.Observe(ctx, e.ClientSecret)
		if err != nil {
			return []Event{StatusFailed{Err: err}}
		}
		return []Event{StatusObserved{Outcome: outcome, Message: msg}}

	case ClearCart:
		if o.deps.Cart != nil {
			o.deps.Cart.Clear(ctx)
		}
		return nil
	}
	return nil
}
