package model

import "time"

//在庫調整の履歴（管理者操作、支払い確定、キャンセル時の戻し）

type InventoryAdjustment struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"not null;index" json:"productId"`
	//システム処理（webhook）の場合は空
	ActorUserID string    `gorm:"type:varchar(64);index" json:"actorUserId"`
	Delta       int64     `gorm:"not null" json:"delta"`
	Reason      string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}
