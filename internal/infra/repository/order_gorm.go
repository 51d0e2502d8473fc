package repository

import (
	"context"
	"errors"
	"time"

	"oifit/internal/domain/model"
	repo "oifit/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) orders(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Order{})
}

// 1件取得。見つからなければErrNotFound
func (r *OrderGormRepository) first(ctx context.Context, query string, args ...any) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Where(query, args...).Take(&o).Error; err != nil {
		return model.Order{}, mapErr(err)
	}
	return o, nil
}

// 新しい順にページを切り出す
func pageOf(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Order("id DESC").Limit(limit).Offset((page - 1) * limit)
	}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	return r.first(ctx, "id = ?", orderID)
}

func (r *OrderGormRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (model.Order, error) {
	return r.first(ctx, "payment_intent_id = ?", intentID)
}

func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, userID string, key string) (model.Order, bool, error) {
	o, err := r.first(ctx, "user_id = ? AND idempotency_key = ?", userID, key)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return model.Order{}, false, nil
	case err != nil:
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID string, page int, limit int) ([]model.Order, int64, error) {
	return r.list(r.orders(ctx).Where("user_id = ?", userID), page, limit, false)
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	return r.list(r.orders(ctx).Scopes(adminFilter(f)), f.Page, f.Limit, true)
}

func adminFilter(f repo.AdminOrderListFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.UserID != nil {
			q = q.Where("user_id = ?", *f.UserID)
		}
		if f.From != nil {
			q = q.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("created_at <= ?", *f.To)
		}
		return q
	}
}

// 件数とページを同じ条件で取る
func (r *OrderGormRepository) list(q *gorm.DB, page, limit int, withItems bool) ([]model.Order, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	q = q.Scopes(pageOf(page, limit))
	if withItems {
		q = q.Preload("Items")
	}
	items := []model.Order{}
	if err := q.Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}
	return items, total, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	// 明細はOrderItemRepositoryで入れる
	if err := r.db.WithContext(ctx).Omit("Items").Create(&order).Error; err != nil {
		return 0, mapErr(err)
	}
	return order.ID, nil
}

// 条件付き更新。1行変わったらtrue
func (r *OrderGormRepository) guarded(ctx context.Context, orderID int64, status model.OrderStatus, values map[string]any) (bool, error) {
	res := r.orders(ctx).Where("id = ? AND status = ?", orderID, status).Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) (bool, error) {
	return r.guarded(ctx, orderID, from, map[string]any{"status": to})
}

func (r *OrderGormRepository) MarkPaid(ctx context.Context, orderID int64, paidAt time.Time) (bool, error) {
	return r.guarded(ctx, orderID, model.OrderStatusPending, map[string]any{
		"status":  model.OrderStatusPaid,
		"paid_at": paidAt,
	})
}

func (r *OrderGormRepository) SetPaymentIntent(ctx context.Context, orderID int64, intentID string) error {
	return r.setColumn(ctx, orderID, "payment_intent_id", intentID)
}

func (r *OrderGormRepository) UpdateDelivery(ctx context.Context, orderID int64, delivery string) error {
	return r.setColumn(ctx, orderID, "delivery", delivery)
}

func (r *OrderGormRepository) setColumn(ctx context.Context, orderID int64, column string, value any) error {
	res := r.orders(ctx).Where("id = ?", orderID).Update(column, value)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
