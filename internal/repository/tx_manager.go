package repository

import "context"

// 1トランザクション内で共有するrepo
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Inventory() InventoryRepository
	Products() ProductRepository
	AuditLogs() AuditLogRepository
}

// 注文作成・支払い確定・ステータス変更・在庫更新はここを通す
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
