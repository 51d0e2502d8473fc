package repository

import (
	"context"

	"oifit/internal/domain/model"
)

type UserListFilter struct {
	Page  int
	Limit int
	Q     string
	Role  string
}

// 保存・取得を約束
type UserRepository interface {
	// IDからユーザーを1件取得する。無ければErrNotFound
	FindByID(ctx context.Context, userID string) (model.User, error)
	//トークンの情報から行を作る（既にあればそのまま返す）
	FindOrCreate(ctx context.Context, user model.User) (model.User, error)
	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
	SetActive(ctx context.Context, userID string, active bool) error
	SetRole(ctx context.Context, userID string, role model.Role) error
	UpdateProfile(ctx context.Context, userID string, name, phone *string) error
}
