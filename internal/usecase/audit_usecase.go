package usecase

import (
	"context"
	"net/http"
	"strings"

	"oifit/internal/domain/model"
	repo "oifit/internal/repository"
)

// 管理画面の操作履歴
type AuditUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditUsecase(logs repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{logs: logs}
}

// クエリ文字列そのまま。検証はここでする
type AuditListInput struct {
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	From         string
	To           string
	Page         int
	Limit        int
}

type AuditListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (u *AuditUsecase) List(ctx context.Context, in AuditListInput) (AuditListOutput, error) {
	if in.Page < 1 {
		return AuditListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 200 {
		return AuditListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	f := repo.AuditLogFilter{
		ActorUserID: strings.TrimSpace(in.Actor),
		ResourceID:  strings.TrimSpace(in.ResourceID),
		Page:        in.Page,
		Limit:       in.Limit,
	}
	if in.Action != "" {
		a, ok := model.ParseAuditAction(in.Action)
		if !ok {
			return AuditListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid action")
		}
		f.Action = a
	}
	if in.ResourceType != "" {
		t, ok := model.ParseAuditResourceType(in.ResourceType)
		if !ok {
			return AuditListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
		}
		f.ResourceType = t
	}
	if in.From != "" {
		t, ok := ParseDateTimeRFC3339(in.From)
		if !ok {
			return AuditListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid from")
		}
		f.From = t
	}
	if in.To != "" {
		t, ok := ParseDateTimeRFC3339(in.To)
		if !ok {
			return AuditListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid to")
		}
		f.To = t
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return AuditListOutput{}, NewHTTPError(http.StatusBadRequest, "from must be before to")
	}

	logs, total, err := u.logs.List(ctx, f)
	if err != nil {
		return AuditListOutput{}, errDB
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return AuditListOutput{Items: logs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}
