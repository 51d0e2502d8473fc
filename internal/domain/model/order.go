package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
	OrderStatusReturned  OrderStatus = "RETURNED"
)

// 画面表示用（pt-BR）
var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Pendente",
	OrderStatusPaid:      "Pago",
	OrderStatusShipped:   "Enviado",
	OrderStatusDelivered: "Entregue",
	OrderStatusCanceled:  "Cancelado",
	OrderStatusReturned:  "Devolvido",
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	_, ok := orderStatusLabels[st]
	return st, ok
}

func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// 終端ステータス
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCanceled, OrderStatusReturned:
		return true
	}
	return false
}

// 在庫を確保済み（PAID以降で出荷前後）
func (s OrderStatus) HoldsStock() bool {
	return s == OrderStatusPaid || s == OrderStatusShipped
}

// CanTransition reports whether an order may move from s to next.
// PENDING to PAID is allowed here; who may trigger it is decided by the caller.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPaid || next == OrderStatusCanceled
	case OrderStatusPaid:
		return next == OrderStatusShipped || next == OrderStatusCanceled
	case OrderStatusShipped:
		return next == OrderStatusDelivered || next == OrderStatusReturned
	case OrderStatusDelivered:
		return next == OrderStatusReturned
	}
	return false
}

type Order struct {
	ID     int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string      `gorm:"type:varchar(64);not null;index" json:"userId"`
	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	// 商品合計（割引後）＋送料
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
	Freight    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"freight"`
	CityName   string          `gorm:"type:varchar(255)" json:"cityName"`
	// Stripeに請求した額（セント）
	AmountCents int64  `gorm:"not null" json:"amountCents"`
	Currency    string `gorm:"type:varchar(3);not null" json:"currency"`

	AddressID       *int64           `gorm:"index" json:"addressId"`
	ShippingAddress *ShippingAddress `gorm:"serializer:json;type:jsonb" json:"shippingAddress"`
	// 配送メモ（追跡番号など）
	Delivery string `gorm:"type:text" json:"delivery"`

	PaymentIntentID *string    `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	IdempotencyKey  string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	PaidAt          *time.Time `json:"paidAt"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
