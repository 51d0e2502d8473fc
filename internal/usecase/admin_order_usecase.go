package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"oifit/internal/domain/model"
	"oifit/internal/infra/messaging"
	repo "oifit/internal/repository"

	"github.com/rs/zerolog"
)

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	events messaging.Publisher
	log    zerolog.Logger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, events messaging.Publisher, log zerolog.Logger) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, events: events, log: log}
}

type AdminUpdateOrderStatusInput struct {
	Status string `json:"status"`
}

type AdminUpdateDeliveryInput struct {
	Delivery string `json:"delivery"`
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" {
		if _, ok := model.ParseOrderStatus(f.Status); !ok {
			return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	out := OrderListOutput{Items: []OrderOutput{}, Page: f.Page, Limit: f.Limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return errDB
		}
		out.Total = total

		//preloadされていない注文の明細だけまとめて取る
		var missing []int64
		for _, o := range orders {
			if o.Items == nil {
				missing = append(missing, o.ID)
			}
		}
		loaded, err := r.OrderItems().ByOrders(ctx, missing)
		if err != nil {
			return errDB
		}

		for _, o := range orders {
			items := o.Items
			if items == nil {
				items = loaded[o.ID]
			}
			out.Items = append(out.Items, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// UpdateStatus applies an admin status change. PAID can only come from the
// payment confirmation; canceling a PAID order puts its stock back.
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID string, orderID int64, in AdminUpdateOrderStatusInput) error {
	if strings.TrimSpace(actorAdminUserID) == "" {
		return errUnauthorized
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus, ok := model.ParseOrderStatus(strings.TrimSpace(in.Status))
	if !ok {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if newStatus == model.OrderStatusPaid {
		return NewHTTPError(http.StatusBadRequest, "paid is set by payment confirmation")
	}

	var before model.Order
	changed := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		if err != nil {
			return errDB
		}
		before = o

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}
		if !o.Status.CanTransition(newStatus) {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("cannot change %s order to %s", strings.ToLower(string(o.Status)), strings.ToLower(string(newStatus))))
		}

		// 支払い済みのキャンセルだけ在庫戻し（PENDINGはまだ在庫を取っていない）
		if newStatus == model.OrderStatusCanceled && o.Status.HoldsStock() {
			items, err := r.OrderItems().ByOrder(ctx, orderID)
			if err != nil {
				return errDB
			}

			for _, it := range items {
				if err := r.Inventory().Restock(ctx, it.ProductID, it.Quantity); err != nil {
					return errDB
				}
				if err := r.Inventory().Record(ctx, model.InventoryAdjustment{
					ProductID:   it.ProductID,
					ActorUserID: actorAdminUserID,
					Delta:       it.Quantity,
					Reason:      fmt.Sprintf("order #%d canceled", orderID),
					CreatedAt:   now(),
				}); err != nil {
					return errDB
				}
			}
		}

		// ステータス更新（読んだ時点から変わっていたら競合）
		updated, err := r.Orders().UpdateStatus(ctx, orderID, o.Status, newStatus)
		if err != nil {
			return errDB
		}
		if !updated {
			return NewHTTPError(http.StatusConflict, "order changed, reload and retry")
		}
		changed = true

		//監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   strconv.FormatInt(orderID, 10),
			BeforeJSON:   `{"status":"` + string(o.Status) + `"}`,
			AfterJSON:    `{"status":"` + string(newStatus) + `"}`,
			CreatedAt:    now(),
		}); err != nil {
			return errDB
		}

		return nil
	})
	if err != nil {
		return err
	}

	if changed && u.events != nil {
		if err := u.events.Publish(ctx, messaging.OrderEvent{
			Type:        messaging.EventOrderStatusChanged,
			OrderID:     orderID,
			UserID:      before.UserID,
			Status:      string(newStatus),
			PrevStatus:  string(before.Status),
			AmountCents: before.AmountCents,
		}); err != nil {
			u.log.Warn().Err(err).Int64("order_id", orderID).Msg("publish order event")
		}
	}
	return nil
}

// 配送メモ（追跡番号など）の更新
func (u *AdminOrderUsecase) UpdateDelivery(ctx context.Context, actorAdminUserID string, orderID int64, in AdminUpdateDeliveryInput) error {
	if strings.TrimSpace(actorAdminUserID) == "" {
		return errUnauthorized
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	delivery := strings.TrimSpace(in.Delivery)
	if len(delivery) > 1000 {
		return NewHTTPError(http.StatusBadRequest, "delivery too long")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		if err != nil {
			return errDB
		}

		if err := r.Orders().UpdateDelivery(ctx, orderID, delivery); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errNotFound
			}
			return errDB
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateDelivery,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   strconv.FormatInt(orderID, 10),
			BeforeJSON:   jsonString("delivery", o.Delivery),
			AfterJSON:    jsonString("delivery", delivery),
			CreatedAt:    now(),
		}); err != nil {
			return errDB
		}
		return nil
	})
}

// 期間パラメータ。handlerでtime.Parseしてここに入れる
func ParseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
