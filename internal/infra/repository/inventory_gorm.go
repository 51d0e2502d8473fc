package repository

import (
	"context"

	"oifit/internal/domain/model"
	repo "oifit/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 削除済み商品も対象（キャンセル時の戻しのため）
func (r *InventoryGormRepository) stock(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Unscoped().Model(&model.Product{})
}

func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, stock int64) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID).Update("stock", stock)
	return affectedOne(res)
}

// 条件付きUPDATEなので同時の支払い確定でもマイナスにならない
func (r *InventoryGormRepository) Take(ctx context.Context, productID int64, qty int64) (bool, error) {
	res := r.stock(ctx).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *InventoryGormRepository) Restock(ctx context.Context, productID int64, qty int64) error {
	res := r.stock(ctx).Where("id = ?", productID).UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	return affectedOne(res)
}

func (r *InventoryGormRepository) Record(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}

func affectedOne(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
