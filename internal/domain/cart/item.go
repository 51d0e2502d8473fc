package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"oifit/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

// 保存データが壊れている（読み込み時は空カート扱い）
var ErrStorageCorrupt = errors.New("cart storage corrupt")

// 1行あたりの上限（APIからの入力に使う）
const MaxQuantity int64 = 99

// カートに入れた時点の商品情報
type ProductSnapshot struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Discount decimal.Decimal `json:"discount"`
	Category string          `json:"category,omitempty"`
	Image    string          `json:"image,omitempty"`
}

// 商品ID・サイズ・色の組で1行
type LineItem struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int64           `json:"quantity"`
	Size     string          `json:"size,omitempty"`
	Color    string          `json:"color,omitempty"`
}

type Key struct {
	ProductID int64
	Size      string
	Color     string
}

func (li LineItem) Key() Key {
	return Key{ProductID: li.Product.ID, Size: li.Size, Color: li.Color}
}

// 割引なしの行合計
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(li.Quantity))
}

// Marshal serializes the whole cart as the JSON array kept in the storage slot.
func Marshal(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// Unmarshal parses a storage slot. An empty slot is an empty cart; anything that
// does not decode to valid lines is reported as ErrStorageCorrupt.
func Unmarshal(data []byte) ([]LineItem, error) {
	if len(data) == 0 {
		return []LineItem{}, nil
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}

	for i, it := range items {
		if it.Product.ID <= 0 || it.Quantity < 1 {
			return nil, fmt.Errorf("%w: invalid line %d", ErrStorageCorrupt, i)
		}
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

// チェックアウト時の金額計算用
func PricingLines(items []LineItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{
			UnitPrice:       it.Product.Price,
			DiscountPercent: it.Product.Discount,
			Quantity:        it.Quantity,
		})
	}
	return lines
}
