package validator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 管理画面の商品作成・更新フォーム
type ProductForm struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Stock       int64           `json:"stock"`
	IsActive    bool            `json:"isActive"`
}

func (f ProductForm) Validate() error {
	price := Ok("price")
	if f.Price.IsNegative() {
		price = Invalid("price", "must be >= 0")
	}

	discount := Ok("discount")
	if f.Discount.IsNegative() || f.Discount.GreaterThan(decimal.NewFromInt(100)) {
		discount = Invalid("discount", "must be between 0 and 100")
	}

	stock := Ok("stock")
	if f.Stock < 0 {
		stock = Invalid("stock", "must be >= 0")
	}

	images := Ok("images")
	for _, u := range f.Images {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			images = Invalid("images", "must be absolute urls")
			break
		}
	}

	return collect(
		required("name", f.Name),
		maxLen("name", strings.TrimSpace(f.Name), 255),
		price,
		discount,
		required("category", f.Category),
		stock,
		images,
	)
}
