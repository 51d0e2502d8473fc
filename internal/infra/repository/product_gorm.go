package repository

import (
	"context"
	"strings"

	"oifit/internal/domain/model"
	repo "oifit/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 並び順。未知の値は新着順
var productSorts = map[string][]string{
	"price_asc":  {"products.price ASC", "products.id ASC"},
	"price_desc": {"products.price DESC", "products.id DESC"},
	"name":       {"products.name ASC", "products.id ASC"},
	"":           {"products.created_at DESC", "products.id DESC"},
}

// 公開中の商品の絞り込み
func publicProducts(q repo.ProductListQuery) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("products.is_active = ?", true)
		if term := strings.TrimSpace(q.Q); term != "" {
			tx = tx.Where("products.name ILIKE ?", "%"+term+"%")
		}
		if cat := strings.TrimSpace(q.Category); cat != "" {
			tx = tx.Joins("JOIN categories ON categories.id = products.category_id").
				Where("categories.name = ?", cat)
		}
		if q.MinPrice != nil {
			tx = tx.Where("products.price >= ?", *q.MinPrice)
		}
		if q.MaxPrice != nil {
			tx = tx.Where("products.price <= ?", *q.MaxPrice)
		}
		return tx
	}
}

func sortProducts(key string) func(*gorm.DB) *gorm.DB {
	order, ok := productSorts[key]
	if !ok {
		order = productSorts[""]
	}
	return func(tx *gorm.DB) *gorm.DB {
		for _, o := range order {
			tx = tx.Order(o)
		}
		return tx
	}
}

func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Product{}).Scopes(publicProducts(q))

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	products := []model.Product{}
	err := tx.Scopes(sortProducts(q.Sort)).
		Preload("Category").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, 0, err
	}
	return products, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Preload("Category").Take(&p, id).Error; err != nil {
		return model.Product{}, mapErr(err)
	}
	return p, nil
}

// 注文時の価格の取り直し
func (r *ProductGormRepository) FindActiveByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []model.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&list).Error; err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 全項目を上書き（jsonbはキャストして渡す）
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"discount":    p.Discount,
		"category_id": p.CategoryID,
		"images":      gorm.Expr("?::jsonb", jsonText(p.Images)),
		"sizes":       gorm.Expr("?::jsonb", jsonText(p.Sizes)),
		"colors":      gorm.Expr("?::jsonb", jsonText(p.Colors)),
		"stock":       p.Stock,
		"is_active":   p.IsActive,
	})
	return affectedOne(res)
}

// deleted_atを立てるだけ
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	return affectedOne(r.db.WithContext(ctx).Delete(&model.Product{}, id))
}

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	list := []model.Category{}
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// 同名の同時作成はON CONFLICTで吸収して取り直す
func (r *CategoryGormRepository) FindOrCreateByName(ctx context.Context, name string) (model.Category, error) {
	name = strings.TrimSpace(name)
	c := model.Category{Name: name}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&c).Error; err != nil {
		return model.Category{}, err
	}
	var out model.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&out).Error; err != nil {
		return model.Category{}, mapErr(err)
	}
	return out, nil
}
