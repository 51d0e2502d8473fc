package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"oifit/internal/domain/model"
	"oifit/internal/domain/pricing"
	repo "oifit/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemOutput struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Quantity  int64           `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type OrderOutput struct {
	ID              int64                  `json:"id"`
	UserID          string                 `json:"userId"`
	Status          string                 `json:"status"`
	StatusLabel     string                 `json:"statusLabel"`
	TotalPrice      decimal.Decimal        `json:"totalPrice"`
	Total           string                 `json:"total"`
	Freight         decimal.Decimal        `json:"freight"`
	CityName        string                 `json:"cityName"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress,omitempty"`
	Delivery        string                 `json:"delivery,omitempty"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	Items           []OrderItemOutput      `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string, page, limit int) (OrderListOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return OrderListOutput{}, errUnauthorized
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	out := OrderListOutput{Items: []OrderOutput{}, Page: page, Limit: limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return errDB
		}
		out.Total = total

		ids := make([]int64, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		items, err := r.OrderItems().ByOrders(ctx, ids)
		if err != nil {
			return errDB
		}
		for _, o := range orders {
			out.Items = append(out.Items, toOrderOutput(o, items[o.ID]))
		}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID string, orderID int64) (OrderOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return OrderOutput{}, errUnauthorized
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		if err != nil {
			return errDB
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return errNotFound
		}

		items, err := r.OrderItems().ByOrder(ctx, orderID)
		if err != nil {
			return errDB
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Discount:  it.DiscountSnapshot,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			LineTotal: it.LineTotal(),
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		StatusLabel:     o.Status.Label(),
		TotalPrice:      o.TotalPrice,
		Total:           pricing.FormatBRL(o.AmountCents),
		Freight:         o.Freight,
		CityName:        o.CityName,
		ShippingAddress: o.ShippingAddress,
		Delivery:        o.Delivery,
		PaidAt:          o.PaidAt,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
