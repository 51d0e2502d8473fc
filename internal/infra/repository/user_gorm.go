package repository

import (
	"context"
	"strings"

	"oifit/internal/domain/model"
	domainrepo "oifit/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return model.User{}, mapErr(err)
	}

	return u, nil
}

// 初回アクセス時に行を作る。既存の行は上書きしない
func (r *userGormRepository) FindOrCreate(ctx context.Context, user model.User) (model.User, error) {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.IsActive = true
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&user).Error; err != nil {
		return model.User{}, err
	}
	return r.FindByID(ctx, user.ID)
}

func (r *userGormRepository) List(ctx context.Context, f domainrepo.UserListFilter) ([]model.User, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.User{})
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + s + "%"
		q = q.Where("email ILIKE ? OR name ILIKE ?", like, like)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.User{}, 0, err
	}

	users := []model.User{}
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("created_at desc").Limit(f.Limit).Offset(offset).Find(&users).Error; err != nil {
		return []model.User{}, 0, err
	}
	return users, total, nil
}

func (r *userGormRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"is_active": active})
}

func (r *userGormRepository) SetRole(ctx context.Context, id string, role model.Role) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"role": role})
}

func (r *userGormRepository) UpdateProfile(ctx context.Context, id string, name, phone *string) error {
	cols := map[string]interface{}{}
	if name != nil {
		cols["name"] = *name
	}
	if phone != nil {
		cols["phone"] = *phone
	}
	if len(cols) == 0 {
		return nil
	}
	return r.updateColumns(ctx, id, cols)
}

func (r *userGormRepository) updateColumns(ctx context.Context, id string, cols map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(cols)

	if res.Error != nil {
		return res.Error
	}

	// 0件更新は「対象がない」
	if res.RowsAffected == 0 {
		return domainrepo.ErrNotFound
	}
	return nil
}
