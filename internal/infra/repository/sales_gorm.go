package repository

import (
	"context"
	"time"

	"oifit/internal/domain/model"
	repo "oifit/internal/repository"

	"gorm.io/gorm"
)

// 売上に数えるステータス
var revenueStatuses = []model.OrderStatus{
	model.OrderStatusPaid,
	model.OrderStatusShipped,
	model.OrderStatusDelivered,
}

type SalesGormRepository struct {
	db *gorm.DB
}

func NewSalesGormRepository(db *gorm.DB) *SalesGormRepository {
	return &SalesGormRepository{db: db}
}

func (r *SalesGormRepository) TotalsByStatus(ctx context.Context) ([]repo.StatusTotal, error) {
	var rows []repo.StatusTotal
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SalesGormRepository) ItemsSold(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", revenueStatuses).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Scan(&n).Error
	return n, err
}

func (r *SalesGormRepository) MonthlyRevenue(ctx context.Context, since time.Time) ([]repo.MonthlyRevenue, error) {
	var rows []repo.MonthlyRevenue
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("date_trunc('month', created_at) AS month, COALESCE(SUM(total_price), 0) AS revenue, COUNT(*) AS orders").
		Where("status IN ? AND created_at >= ?", revenueStatuses, since).
		Group("month").
		Order("month asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SalesGormRepository) Recent(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 5
	}
	list := []model.Order{}
	if err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
