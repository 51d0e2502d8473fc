package checkout

import (
	"errors"

	"oifit/internal/domain/cart"
	"oifit/internal/payment"
	"oifit/internal/validator"
)

type State string

const (
	StateIdle                 State = "IDLE"
	StateResolvingAddress     State = "RESOLVING_ADDRESS"
	StateAwaitingAddressInput State = "AWAITING_ADDRESS_INPUT"
	StatePricingReady         State = "PRICING_READY"
	StateAwaitingPaymentSetup State = "AWAITING_PAYMENT_SETUP"
	StatePaymentFormVisible   State = "PAYMENT_FORM_VISIBLE"
	StateObservingResult      State = "OBSERVING_RESULT"
	StateSucceeded            State = "SUCCEEDED"
	StateProcessing           State = "PROCESSING"
	StateFailed               State = "FAILED"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrAddressRequired = errors.New("shipping address required")
	ErrNoAddressMatch  = errors.New("no saved address matches")
)

// 配送先
type Address struct {
	ID           int64   `json:"id"`
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood string  `json:"neighborhood"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zipCode"`
	Country      string  `json:"country"`
}

// 開始時に指定された配送先。IDが最優先、次に都市名、どちらも合わなければ新しい住所
type AddressChoice struct {
	AddressID  int64
	City       string
	NewAddress *validator.AddressForm
}

func (c AddressChoice) asked() bool {
	return c.AddressID != 0 || c.City != "" || c.NewAddress != nil
}

// 保存済み住所から指定に合うものを探す
func (c AddressChoice) Match(list []Address) (Address, bool) {
	if c.AddressID != 0 {
		return findAddress(list, c.AddressID)
	}
	if c.City == "" {
		return Address{}, false
	}
	for _, a := range list {
		if a.City == c.City {
			return a, true
		}
	}
	return Address{}, false
}

// Session is everything the checkout screen renders.
type Session struct {
	State State

	Items     []cart.LineItem
	Addresses []Address
	Address   *Address
	Choice    AddressChoice

	// 画面表示用の見積もり（請求額はサーバーで再計算）
	PreviewCents int64

	// 発行済みの決済ハンドル
	Generation   int
	ClientSecret string
	OrderID      int64
	AmountCents  int64

	// リダイレクトで受け取った状態（参考表示のみ）
	RedirectStatus string

	CartCleared bool
	Err         error
}

// 入力で生じるイベント
type Event interface{ isEvent() }

type Begin struct {
	Items  []cart.LineItem
	Choice AddressChoice
}
type CartChanged struct{ Items []cart.LineItem }
type AddressesLoaded struct{ Addresses []Address }
type AddressesFailed struct{ Err error }
type AddressSubmitted struct{ Form validator.AddressForm }
type AddressSaved struct{ Address Address }
type AddressSaveFailed struct{ Err error }
type AddressSelected struct{ AddressID int64 }
type SubmissionSent struct{ Generation int }
type HandleReady struct {
	Generation   int
	ClientSecret string
	OrderID      int64
	AmountCents  int64
}
type HandleFailed struct {
	Generation int
	Err        error
}
type PaymentReturned struct {
	ClientSecret   string
	RedirectStatus string
}
type StatusObserved struct {
	Outcome payment.Outcome
	Message string
}
type StatusFailed struct{ Err error }
type Retry struct{}

func (Begin) isEvent()             {}
func (CartChanged) isEvent()       {}
func (AddressesLoaded) isEvent()   {}
func (AddressesFailed) isEvent()   {}
func (AddressSubmitted) isEvent()  {}
func (AddressSaved) isEvent()      {}
func (AddressSaveFailed) isEvent() {}
func (AddressSelected) isEvent()   {}
func (SubmissionSent) isEvent()    {}
func (HandleReady) isEvent()       {}
func (HandleFailed) isEvent()      {}
func (PaymentReturned) isEvent()   {}
func (StatusObserved) isEvent()    {}
func (StatusFailed) isEvent()      {}
func (Retry) isEvent()             {}

// 状態遷移から導かれる副作用
type Effect interface{ isEffect() }

type LoadAddresses struct{}
type SaveAddress struct{ Form validator.AddressForm }
type SubmitOrder struct {
	Generation int
	Items      []cart.LineItem
	CityName   string
	AddressID  int64
}
type ShowPaymentForm struct{ ClientSecret string }
type ObserveStatus struct{ ClientSecret string }
type ClearCart struct{}

func (LoadAddresses) isEffect()   {}
func (SaveAddress) isEffect()     {}
func (SubmitOrder) isEffect()     {}
func (ShowPaymentForm) isEffect() {}
func (ObserveStatus) isEffect()   {}
func (ClearCart) isEffect()       {}
