package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文時点の商品情報を保存する（商品が後で変わっても影響しない）
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"orderId"`
	ProductID           int64           `gorm:"not null;index" json:"productId"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"productName"`
	UnitPriceSnapshot   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	DiscountSnapshot    decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	Size                string          `gorm:"type:varchar(20)" json:"size"`
	Color               string          `gorm:"type:varchar(50)" json:"color"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
}

// 割引後の単価×数量
func (i OrderItem) LineTotal() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	unit := i.UnitPriceSnapshot.Mul(hundred.Sub(i.DiscountSnapshot)).Div(hundred)
	return unit.Mul(decimal.NewFromInt(i.Quantity))
}
