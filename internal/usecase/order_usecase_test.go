package usecase

import (
	"context"
	"testing"

	"oifit/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderFixture() (*OrderUsecase, *OrderRepoMock, *OrderItemRepoMock) {
	orders := new(OrderRepoMock)
	items := new(OrderItemRepoMock)
	tx := &TxManagerMock{Repos: &TxReposMock{orders: orders, orderItems: items}}
	tx.On("WithinTx", mock.Anything).Return()
	return NewOrderUsecase(tx), orders, items
}

func TestListMyOrders(t *testing.T) {
	uc, orders, items := newOrderFixture()

	orders.On("ListByUserID", mock.Anything, "u1", 1, 10).Return([]model.Order{
		{ID: 3, UserID: "u1", Status: model.OrderStatusShipped, AmountCents: 12990},
	}, int64(1), nil)
	items.On("ByOrders", mock.Anything, []int64{3}).Return(map[int64][]model.OrderItem{3: {{
		ProductID:           1,
		ProductNameSnapshot: "Legging",
		UnitPriceSnapshot:   decimal.RequireFromString("129.90"),
		DiscountSnapshot:    decimal.Zero,
		Quantity:            1,
	}}}, nil)

	out, err := uc.ListMyOrders(context.Background(), "u1", 1, 10)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Enviado", out.Items[0].StatusLabel)
	assert.Equal(t, "Legging", out.Items[0].Items[0].Name)
	assert.Equal(t, int64(1), out.Total)
}

func TestListMyOrders_InvalidPaging(t *testing.T) {
	uc, _, _ := newOrderFixture()

	_, err := uc.ListMyOrders(context.Background(), "u1", 0, 10)
	assertErrContains(t, err, "invalid page")
	_, err = uc.ListMyOrders(context.Background(), "u1", 1, 500)
	assertErrContains(t, err, "invalid limit")
}

func TestGetMyOrderDetail_OtherUserIsNotFound(t *testing.T) {
	uc, orders, items := newOrderFixture()

	orders.On("FindByID", mock.Anything, int64(3)).Return(model.Order{ID: 3, UserID: "u2"}, nil)

	_, err := uc.GetMyOrderDetail(context.Background(), "u1", 3)
	assertErrContains(t, err, "not found")
	items.AssertNotCalled(t, "ByOrder", mock.Anything, mock.Anything)
}
