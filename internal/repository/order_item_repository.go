package repository

import (
	"context"

	"oifit/internal/domain/model"
)

// 注文明細（作成後は変更しない）
type OrderItemRepository interface {
	Insert(ctx context.Context, orderID int64, items []model.OrderItem) error
	ByOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	// 一覧画面用。注文IDごとにまとめる
	ByOrders(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error)
}
