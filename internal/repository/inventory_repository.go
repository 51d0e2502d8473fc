package repository

import (
	"context"

	"oifit/internal/domain/model"
)

// 在庫は products.stock。変更は必ずRecordで履歴を残す
type InventoryRepository interface {
	SetStock(ctx context.Context, productID int64, stock int64) error
	// 足りなければfalse（在庫は変えない）
	Take(ctx context.Context, productID int64, qty int64) (bool, error)
	Restock(ctx context.Context, productID int64, qty int64) error
	Record(ctx context.Context, adj model.InventoryAdjustment) error
}
