package repository

import (
	"context"
	"time"

	"oifit/internal/domain/model"
)

// 管理画面の注文検索。空のフィールドは絞り込まない
type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *string
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	// 参照
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByPaymentIntentID(ctx context.Context, intentID string) (model.Order, error)
	// 同じユーザー・同じキーの注文があればfound=true
	FindByIdempotencyKey(ctx context.Context, userID string, key string) (model.Order, bool, error)
	ListByUserID(ctx context.Context, userID string, page int, limit int) ([]model.Order, int64, error)
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	// 作成。キー重複はErrConflict
	Create(ctx context.Context, order model.Order) (int64, error)

	// ステータス遷移。今のステータスが一致した時だけ更新し、負けたらfalse
	UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) (bool, error)
	MarkPaid(ctx context.Context, orderID int64, paidAt time.Time) (bool, error)

	SetPaymentIntent(ctx context.Context, orderID int64, intentID string) error
	UpdateDelivery(ctx context.Context, orderID int64, delivery string) error
}
