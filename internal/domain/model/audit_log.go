package model

import "time"

type AuditAction string

const (
	AuditActionUpdateStock       AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionUpdateDelivery    AuditAction = "UPDATE_DELIVERY"
	AuditActionUpsertProduct     AuditAction = "UPSERT_PRODUCT"
	AuditActionDeleteProduct     AuditAction = "DELETE_PRODUCT"
	// 権限・有効状態・プロフィール
	AuditActionUpdateUser AuditAction = "UPDATE_USER"
)

type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

func ParseAuditAction(s string) (AuditAction, bool) {
	switch a := AuditAction(s); a {
	case AuditActionUpdateStock, AuditActionUpdateOrderStatus, AuditActionUpdateDelivery,
		AuditActionUpsertProduct, AuditActionDeleteProduct, AuditActionUpdateUser:
		return a, true
	}
	return "", false
}

func ParseAuditResourceType(s string) (AuditResourceType, bool) {
	switch t := AuditResourceType(s); t {
	case AuditResourceProduct, AuditResourceOrder, AuditResourceUser:
		return t, true
	}
	return "", false
}

// 管理者操作の記録。before/afterはJSON文字列
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  string            `gorm:"type:varchar(64);not null;index" json:"actorUserId"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index:idx_audit_resource" json:"resourceType"`
	// 商品・注文は数値ID、ユーザーはUUID
	ResourceID string    `gorm:"type:varchar(64);not null;index:idx_audit_resource" json:"resourceId"`
	BeforeJSON string    `gorm:"type:text" json:"beforeJson"`
	AfterJSON  string    `gorm:"type:text" json:"afterJson"`
	CreatedAt  time.Time `gorm:"not null;index;autoCreateTime" json:"createdAt"`
}
