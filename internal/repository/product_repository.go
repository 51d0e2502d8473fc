package repository

import (
	"context"

	"oifit/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	//注文用。公開中かつ未削除のものだけ返す（見つからないIDは含まれない）
	FindActiveByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	//名前で探し、無ければ作る
	FindOrCreateByName(ctx context.Context, name string) (model.Category, error)
}
