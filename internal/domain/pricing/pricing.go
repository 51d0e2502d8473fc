package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// 金額計算の1行分
type Line struct {
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Quantity        int64
}

// 計算前の入力チェックで弾かれた行
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("line %d: %s %s", e.Index, e.Field, e.Reason)
}

// 割引後の単価
func EffectivePrice(unitPrice, discountPercent decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(hundred.Sub(discountPercent)).Div(hundred)
}

func validate(i int, l Line) error {
	if l.UnitPrice.IsNegative() {
		return &ValidationError{Index: i, Field: "unitPrice", Reason: "must be >= 0"}
	}
	if l.Quantity <= 0 {
		return &ValidationError{Index: i, Field: "quantity", Reason: "must be > 0"}
	}
	if l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(hundred) {
		return &ValidationError{Index: i, Field: "discountPercent", Reason: "must be between 0 and 100"}
	}
	return nil
}

// 送料抜きの小計
func Subtotal(lines []Line) (decimal.Decimal, error) {
	sum := decimal.Zero
	for i, l := range lines {
		if err := validate(i, l); err != nil {
			return decimal.Zero, err
		}
		line := EffectivePrice(l.UnitPrice, l.DiscountPercent).Mul(decimal.NewFromInt(l.Quantity))
		sum = sum.Add(line)
	}
	return sum, nil
}

// Calculate returns the amount to charge in cents: the discounted subtotal plus
// the city's freight, rounded half up. An unknown city ships for free.
func Calculate(lines []Line, cityName string) (int64, error) {
	subtotal, err := Subtotal(lines)
	if err != nil {
		return 0, err
	}
	cents, ok := CentsOf(subtotal.Add(Freight(cityName)))
	if !ok {
		return 0, &ValidationError{Index: -1, Field: "total", Reason: "exceeds the chargeable range"}
	}
	return cents, nil
}

// セント単位に四捨五入。int64に収まらなければok=false
func CentsOf(amount decimal.Decimal) (int64, bool) {
	c := amount.Mul(hundred).Round(0)
	if !c.BigInt().IsInt64() {
		return 0, false
	}
	return c.IntPart(), true
}

// 表示用。範囲外は0
func ToCents(amount decimal.Decimal) int64 {
	c, _ := CentsOf(amount)
	return c
}

// セント→金額
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
