package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"oifit/internal/domain/model"
	"oifit/internal/payment"
	repo "oifit/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSalesStats(t *testing.T) {
	ctx := context.Background()
	fixNow(t, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))

	sales := new(SalesRepoMock)
	gateway := new(GatewayMock)

	sales.On("TotalsByStatus", ctx).Return([]repo.StatusTotal{
		{Status: model.OrderStatusPending, Count: 2, Amount: decimal.RequireFromString("50.00")},
		{Status: model.OrderStatusPaid, Count: 1, Amount: decimal.RequireFromString("100.00")},
		{Status: model.OrderStatusDelivered, Count: 2, Amount: decimal.RequireFromString("200.00")},
		{Status: model.OrderStatusCanceled, Count: 1, Amount: decimal.RequireFromString("30.00")},
	}, nil)
	sales.On("ItemsSold", ctx).Return(int64(7), nil)
	sales.On("MonthlyRevenue", ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)).Return([]repo.MonthlyRevenue{
		{Month: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Revenue: decimal.RequireFromString("300.00"), Orders: 3},
	}, nil)
	sales.On("Recent", ctx, 5).Return([]model.Order{{ID: 1, Status: model.OrderStatusPaid}}, nil)
	gateway.On("Balance", ctx, "brl").Return(payment.Balance{AvailableCents: 12345, PendingCents: 0}, nil)

	out, err := NewSalesUsecase(sales, gateway, "brl", zerolog.Nop()).Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(6), out.TotalOrders)
	assert.Equal(t, int64(3), out.PaidOrders)
	assert.Equal(t, int64(2), out.PendingOrders)
	assert.Equal(t, int64(1), out.CanceledOrders)
	assert.Equal(t, "300.00", out.TotalRevenue.StringFixed(2))
	assert.Equal(t, "50.00", out.PendingRevenue.StringFixed(2))
	assert.Equal(t, "100.00", out.AverageOrderValue.StringFixed(2))
	assert.Equal(t, int64(7), out.ItemsSold)
	require.Len(t, out.MonthlyRevenue, 1)
	assert.Equal(t, "2026-05", out.MonthlyRevenue[0].Month)
	require.NotNil(t, out.Balance)
	assert.Len(t, out.RecentOrders, 1)
}

func TestSalesStats_BalanceFailureIsTolerated(t *testing.T) {
	ctx := context.Background()
	sales := new(SalesRepoMock)
	gateway := new(GatewayMock)

	sales.On("TotalsByStatus", ctx).Return([]repo.StatusTotal{}, nil)
	sales.On("ItemsSold", ctx).Return(int64(0), nil)
	sales.On("MonthlyRevenue", ctx, mock.Anything).Return([]repo.MonthlyRevenue{}, nil)
	sales.On("Recent", ctx, 5).Return([]model.Order{}, nil)
	gateway.On("Balance", ctx, "brl").Return(payment.Balance{}, errors.New("stripe down"))

	out, err := NewSalesUsecase(sales, gateway, "brl", zerolog.Nop()).Stats(ctx)
	require.NoError(t, err)
	assert.Nil(t, out.Balance)
	assert.True(t, out.AverageOrderValue.IsZero())
}

func TestSalesStats_DBError(t *testing.T) {
	sales := new(SalesRepoMock)
	sales.On("TotalsByStatus", mock.Anything).Return(nil, errors.New("boom"))

	_, err := NewSalesUsecase(sales, nil, "brl", zerolog.Nop()).Stats(context.Background())
	assertErrContains(t, err, "db error")
}
