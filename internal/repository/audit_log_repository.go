package repository

import (
	"context"
	"time"

	"oifit/internal/domain/model"
)

// GET /admin/audit-logs の絞り込み
type AuditLogFilter struct {
	ActorUserID  string
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   string
	From         *time.Time
	To           *time.Time
	Page         int
	Limit        int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順。totalは絞り込み後の件数
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error)
}
