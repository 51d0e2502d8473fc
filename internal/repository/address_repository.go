package repository

import (
	"context"

	"oifit/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//作成後はaddress（IDなどが埋まったもの）を返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//ユーザーが持つ住所一覧を返す（古い順）
	ListByUserID(ctx context.Context, userID string) ([]model.Address, error)

	//住所IDから住所を1件取得
	FindByID(ctx context.Context, addressID int64) (model.Address, error)

	Delete(ctx context.Context, addressID int64) error
}
