package usecase

import (
	"context"
	"net/http"
	"testing"

	"oifit/internal/domain/cart"
	"oifit/internal/domain/model"
	"oifit/internal/infra/cartstorage"
	repo "oifit/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ユーザーごとのメモリ上スロット
func memoryCarts() CartStorageFactory {
	slots := map[string]*cartstorage.MemoryStorage{}
	return func(userID string) cart.Storage {
		s, ok := slots[userID]
		if !ok {
			s = cartstorage.NewMemoryStorage()
			slots[userID] = s
		}
		return s
	}
}

func newCartFixture() (*CartUsecase, *ProductRepoMock) {
	products := new(ProductRepoMock)
	return NewCartUsecase(products, memoryCarts(), zerolog.Nop()), products
}

func TestCartAddItem_MergesSameVariant(t *testing.T) {
	ctx := context.Background()
	uc, products := newCartFixture()
	products.On("FindByID", ctx, int64(1)).Return(legging(), nil)

	_, err := uc.AddItem(ctx, "u1", AddCartItemInput{ProductID: 1, Size: "M", Color: "Preto"})
	require.NoError(t, err)
	out, err := uc.AddItem(ctx, "u1", AddCartItemInput{ProductID: 1, Quantity: 2, Size: "M", Color: "Preto"})
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(3), out.Items[0].Quantity)
	assert.Equal(t, int64(3), out.TotalItems)
	// カートの合計は割引前
	assert.True(t, out.TotalPrice.Equal(decimal.RequireFromString("300")), out.TotalPrice.String())
}

func TestCartAddItem_SeparatesSizes(t *testing.T) {
	ctx := context.Background()
	uc, products := newCartFixture()
	products.On("FindByID", ctx, int64(1)).Return(legging(), nil)

	_, err := uc.AddItem(ctx, "u1", AddCartItemInput{ProductID: 1, Size: "M"})
	require.NoError(t, err)
	out, err := uc.AddItem(ctx, "u1", AddCartItemInput{ProductID: 1, Size: "P"})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
}

func TestCartAddItem_Rejections(t *testing.T) {
	ctx := context.Background()
	uc, products := newCartFixture()
	inactive := legging()
	inactive.ID = 2
	inactive.IsActive = false
	products.On("FindByID", ctx, int64(1)).Return(legging(), nil)
	products.On("FindByID", ctx, int64(2)).Return(inactive, nil)
	products.On("FindByID", ctx, int64(3)).Return(model.Product{}, repo.ErrNotFound)

	cases := []struct {
		name   string
		in     AddCartItemInput
		status int
	}{
		{"missing product", AddCartItemInput{ProductID: 3}, http.StatusNotFound},
		{"inactive product", AddCartItemInput{ProductID: 2}, http.StatusNotFound},
		{"unknown size", AddCartItemInput{ProductID: 1, Size: "GG"}, http.StatusBadRequest},
		{"unknown color", AddCartItemInput{ProductID: 1, Color: "Rosa"}, http.StatusBadRequest},
		{"over stock", AddCartItemInput{ProductID: 1, Quantity: 6}, http.StatusConflict},
		{"negative quantity", AddCartItemInput{ProductID: 1, Quantity: -1}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.AddItem(ctx, "u1", tc.in)
			he, ok := AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, tc.status, he.Status)
		})
	}

	out, err := uc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestCartSetQuantity_ZeroRemoves(t *testing.T) {
	ctx := context.Background()
	uc, products := newCartFixture()
	products.On("FindByID", ctx, int64(1)).Return(legging(), nil)

	_, err := uc.AddItem(ctx, "u1", AddCartItemInput{ProductID: 1, Size: "M"})
	require.NoError(t, err)

	out, err := uc.SetQuantity(ctx, "u1", SetCartQuantityInput{ProductID: 1, Quantity: 0, Size: "M"})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestCartSetQuantity_RejectsAboveLineLimit(t *testing.T) {
	ctx := context.Background()
	uc, products := newCartFixture()
	products.On("FindByID", ctx, int64(1)).Return(legging(), nil)

	_, err := uc.AddItem(ctx, "u1", AddCartItemInput{ProductID: 1, Size: "M"})
	require.NoError(t, err)

	for _, qty := range []int64{cart.MaxQuantity + 1, 1 << 62} {
		_, err := uc.SetQuantity(ctx, "u1", SetCartQuantityInput{ProductID: 1, Quantity: qty, Size: "M"})
		he, ok := AsHTTPError(err)
		require.True(t, ok, "qty %d", qty)
		assert.Equal(t, http.StatusBadRequest, he.Status)
	}

	out, err := uc.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(1), out.Items[0].Quantity)
}

func TestCartClear_IsPerUser(t *testing.T) {
	ctx := context.Background()
	uc, products := newCartFixture()
	products.On("FindByID", ctx, int64(1)).Return(legging(), nil)

	_, err := uc.AddItem(ctx, "u1", AddCartItemInput{ProductID: 1})
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, "u2", AddCartItemInput{ProductID: 1})
	require.NoError(t, err)

	require.NoError(t, uc.Clear(ctx, "u1"))

	a, _ := uc.GetCart(ctx, "u1")
	b, _ := uc.GetCart(ctx, "u2")
	assert.Empty(t, a.Items)
	assert.Len(t, b.Items, 1)
}

func TestCartQuote_AddsFreightForKnownCity(t *testing.T) {
	ctx := context.Background()
	uc, products := newCartFixture()
	products.On("FindByID", ctx, int64(1)).Return(legging(), nil)

	_, err := uc.AddItem(ctx, "u1", AddCartItemInput{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	q, err := uc.Quote(ctx, "u1", "Jacutinga")
	require.NoError(t, err)
	assert.True(t, q.KnownCity)
	assert.Equal(t, int64(18000), q.SubtotalCents)
	assert.Equal(t, int64(20000), q.TotalCents)

	q, err = uc.Quote(ctx, "u1", "São Paulo")
	require.NoError(t, err)
	assert.False(t, q.KnownCity)
	assert.Equal(t, int64(18000), q.TotalCents)
}

func TestCart_Unauthorized(t *testing.T) {
	uc, _ := newCartFixture()

	_, err := uc.GetCart(context.Background(), " ")
	assertErrContains(t, err, "unauthorized")
}
