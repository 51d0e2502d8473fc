package checkout

import (
	"errors"

	"oifit/internal/domain/cart"
	"oifit/internal/domain/pricing"
	"oifit/internal/payment"
	"oifit/internal/validator"
)

// 決済失敗時にメッセージが無い場合の表示
const defaultFailureMessage = "payment failed, please try again"

// Reduce applies one event to the session and returns the new session plus
// the effects to run. It never performs I/O.
//
// Results of an Order Submission carry the generation they were issued for;
// anything from an older generation is dropped, so a cart or address change
// while a submission is in flight only ever shows the latest handle.
func Reduce(s Session, ev Event) (Session, []Effect) {
	switch e := ev.(type) {
	case Begin:
		s = reset(s)
		s.Items = copyItems(e.Items)
		s.Choice = e.Choice
		if len(s.Items) == 0 {
			s.State = StateIdle
			s.Err = ErrEmptyCart
			return s, nil
		}
		s.PreviewCents = preview(s)
		s.State = StateResolvingAddress
		return s, []Effect{LoadAddresses{}}

	case AddressesLoaded:
		if s.State != StateResolvingAddress {
			return s, nil
		}
		s.Err = nil
		s.Addresses = cloneAddresses(e.Addresses)
		if s.Choice.asked() {
			return resolveChoice(s)
		}
		if len(s.Addresses) == 0 {
			s.Address = nil
			s.State = StateAwaitingAddressInput
			return s, nil
		}
		s.Address = pickAddress(s.Addresses, s.Address)
		return submit(s)

	case AddressesFailed:
		if s.State != StateResolvingAddress {
			return s, nil
		}
		s.State = StateAwaitingAddressInput
		s.Err = e.Err
		return s, nil

	case AddressSubmitted:
		if !canChangeAddress(s.State) {
			return s, nil
		}
		return saveAddress(s, e.Form)

	case AddressSaved:
		if !canChangeAddress(s.State) {
			return s, nil
		}
		s.Addresses = append(cloneAddresses(s.Addresses), e.Address)
		a := e.Address
		s.Address = &a
		return submit(s)

	case AddressSaveFailed:
		s.Err = e.Err
		return s, nil

	case AddressSelected:
		if !canChangeAddress(s.State) {
			return s, nil
		}
		a, ok := findAddress(s.Addresses, e.AddressID)
		if !ok {
			s.Err = ErrAddressRequired
			return s, nil
		}
		s.Address = &a
		return submit(s)

	case CartChanged:
		s.Items = copyItems(e.Items)
		switch s.State {
		case StatePricingReady, StateAwaitingPaymentSetup, StatePaymentFormVisible:
			if len(s.Items) == 0 {
				return abandon(s), nil
			}
			return submit(s)
		case StateResolvingAddress, StateAwaitingAddressInput, StateFailed:
			if len(s.Items) == 0 {
				return abandon(s), nil
			}
			s.PreviewCents = preview(s)
		}
		return s, nil

	case SubmissionSent:
		if e.Generation == s.Generation && s.State == StatePricingReady {
			s.State = StateAwaitingPaymentSetup
		}
		return s, nil

	case HandleReady:
		if e.Generation != s.Generation || !awaitingHandle(s.State) {
			return s, nil
		}
		s.Err = nil
		s.ClientSecret = e.ClientSecret
		s.OrderID = e.OrderID
		s.AmountCents = e.AmountCents
		s.State = StatePaymentFormVisible
		return s, []Effect{ShowPaymentForm{ClientSecret: e.ClientSecret}}

	case HandleFailed:
		if e.Generation != s.Generation || !awaitingHandle(s.State) {
			return s, nil
		}
		s.State = StateFailed
		s.Err = e.Err
		return s, nil

	case PaymentReturned:
		if e.ClientSecret == "" {
			s.State = StateFailed
			s.Err = errors.New("missing payment client secret")
			return s, nil
		}
		s.Err = nil
		s.ClientSecret = e.ClientSecret
		s.RedirectStatus = e.RedirectStatus
		s.State = StateObservingResult
		return s, []Effect{ObserveStatus{ClientSecret: e.ClientSecret}}

	case StatusObserved:
		if s.State != StateObservingResult && s.State != StateProcessing {
			return s, nil
		}
		switch e.Outcome {
		case payment.OutcomeSucceeded:
			s.State = StateSucceeded
		case payment.OutcomeProcessing:
			s.State = StateProcessing
		default:
			// カートは残す
			s.State = StateFailed
			msg := e.Message
			if msg == "" {
				msg = defaultFailureMessage
			}
			s.Err = errors.New(msg)
			return s, nil
		}
		s.Err = nil
		if s.CartCleared {
			return s, nil
		}
		s.CartCleared = true
		return s, []Effect{ClearCart{}}

	case StatusFailed:
		if s.State != StateObservingResult {
			return s, nil
		}
		s.State = StateFailed
		s.Err = e.Err
		return s, nil

	case Retry:
		if s.State != StateFailed {
			return s, nil
		}
		s.Err = nil
		if len(s.Items) == 0 {
			return abandon(s), nil
		}
		if s.Address == nil {
			s.State = StateResolvingAddress
			return s, []Effect{LoadAddresses{}}
		}
		return submit(s)
	}

	return s, nil
}

// 指定された住所で決める。新しい住所は保存が済むまで送信しない
func resolveChoice(s Session) (Session, []Effect) {
	if a, ok := s.Choice.Match(s.Addresses); ok {
		s.Address = &a
		return submit(s)
	}
	s.Address = nil
	s.State = StateAwaitingAddressInput
	if s.Choice.NewAddress != nil {
		return saveAddress(s, *s.Choice.NewAddress)
	}
	s.Err = ErrNoAddressMatch
	return s, nil
}

func saveAddress(s Session, form validator.AddressForm) (Session, []Effect) {
	if err := form.Validate(); err != nil {
		s.Err = err
		return s, nil
	}
	s.Err = nil
	return s, []Effect{SaveAddress{Form: form.Normalize()}}
}

// 新しい世代でOrder Submissionを出す
func submit(s Session) (Session, []Effect) {
	if s.Address == nil {
		s.State = StateAwaitingAddressInput
		s.Err = ErrAddressRequired
		return s, nil
	}

	s.Generation++
	s.ClientSecret = ""
	s.OrderID = 0
	s.AmountCents = 0
	s.PreviewCents = preview(s)
	s.State = StatePricingReady

	return s, []Effect{SubmitOrder{
		Generation: s.Generation,
		Items:      copyItems(s.Items),
		CityName:   s.Address.City,
		AddressID:  s.Address.ID,
	}}
}

// 発行済みハンドルは決済代行の期限切れに任せる
func abandon(s Session) Session {
	s.Generation++
	s.ClientSecret = ""
	s.OrderID = 0
	s.AmountCents = 0
	s.PreviewCents = 0
	s.State = StateIdle
	s.Err = ErrEmptyCart
	return s
}

func reset(s Session) Session {
	return Session{
		Generation: s.Generation + 1,
		Addresses:  s.Addresses,
		Address:    s.Address,
	}
}

func preview(s Session) int64 {
	city := ""
	if s.Address != nil {
		city = s.Address.City
	}
	cents, err := pricing.Calculate(cart.PricingLines(s.Items), city)
	if err != nil {
		return 0
	}
	return cents
}

func canChangeAddress(st State) bool {
	switch st {
	case StateAwaitingAddressInput, StatePricingReady, StateAwaitingPaymentSetup, StatePaymentFormVisible, StateFailed:
		return true
	}
	return false
}

func awaitingHandle(st State) bool {
	return st == StatePricingReady || st == StateAwaitingPaymentSetup
}

func pickAddress(list []Address, current *Address) *Address {
	if current != nil {
		if a, ok := findAddress(list, current.ID); ok {
			return &a
		}
	}
	a := list[0]
	return &a
}

func findAddress(list []Address, id int64) (Address, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

func cloneAddresses(list []Address) []Address {
	if list == nil {
		return nil
	}
	out := make([]Address, len(list))
	copy(out, list)
	return out
}

func copyItems(items []cart.LineItem) []cart.LineItem {
	out := make([]cart.LineItem, len(items))
	copy(out, items)
	return out
}
