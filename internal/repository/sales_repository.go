package repository

import (
	"context"
	"time"

	"oifit/internal/domain/model"

	"github.com/shopspring/decimal"
)

// ステータスごとの件数と金額
type StatusTotal struct {
	Status model.OrderStatus
	Count  int64
	Amount decimal.Decimal
}

type MonthlyRevenue struct {
	Month   time.Time
	Revenue decimal.Decimal
	Orders  int64
}

// 管理画面の売上集計
type SalesRepository interface {
	TotalsByStatus(ctx context.Context) ([]StatusTotal, error)
	//支払い済み以降の注文の販売数量
	ItemsSold(ctx context.Context) (int64, error)
	MonthlyRevenue(ctx context.Context, since time.Time) ([]MonthlyRevenue, error)
	Recent(ctx context.Context, limit int) ([]model.Order, error)
}
