package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func (m *memStorage) Load(ctx context.Context) ([]byte, error) {
	return m.data, m.loadErr
}

func (m *memStorage) Save(ctx context.Context, data []byte) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func product(id int64, price string) ProductSnapshot {
	return ProductSnapshot{ID: id, Name: "Legging", Price: decimal.RequireFromString(price), Discount: decimal.Zero}
}

func newStore(t *testing.T, st *memStorage) *Store {
	t.Helper()
	return Open(context.Background(), st, zerolog.Nop())
}

func TestStore_AddSameKeyIncrements(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &memStorage{})

	for i := 0; i < 3; i++ {
		s.AddItem(ctx, product(1, "99.90"), "M", "Preto")
	}

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].Quantity)
	assert.Equal(t, int64(3), s.TotalItemCount())
	assert.True(t, s.IsOpen())
}

func TestStore_DifferentSizeOrColorIsNewLine(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &memStorage{})

	s.AddItem(ctx, product(1, "10"), "M", "Preto")
	s.AddItem(ctx, product(1, "10"), "G", "Preto")
	s.AddItem(ctx, product(1, "10"), "M", "Rosa")
	s.AddItem(ctx, product(2, "10"), "", "")

	items := s.Items()
	require.Len(t, items, 4)
	assert.Equal(t, "G", items[1].Size)
	assert.Equal(t, "Rosa", items[2].Color)
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &memStorage{})
	s.AddItem(ctx, product(1, "10"), "M", "")

	s.RemoveItem(ctx, 99, "M", "")
	s.RemoveItem(ctx, 1, "P", "")

	assert.Len(t, s.Items(), 1)
}

func TestStore_SetQuantityZeroOrNegativeRemoves(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &memStorage{})
	s.AddItem(ctx, product(1, "10"), "", "")
	s.AddItem(ctx, product(2, "10"), "", "")

	s.SetQuantity(ctx, 1, 0, "", "")
	s.SetQuantity(ctx, 2, -1, "", "")

	assert.Empty(t, s.Items())
}

func TestStore_SetQuantityReplaces(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &memStorage{})
	s.AddItem(ctx, product(1, "25.50"), "P", "")

	s.SetQuantity(ctx, 1, 4, "P", "")
	// 存在しないキーは追加しない
	s.SetQuantity(ctx, 3, 4, "P", "")

	require.Len(t, s.Items(), 1)
	assert.Equal(t, int64(4), s.TotalItemCount())
	assert.True(t, s.TotalPrice().Equal(decimal.RequireFromString("102")))
}

func TestStore_TotalPriceIgnoresDiscount(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &memStorage{})
	p := product(1, "50")
	p.Discount = decimal.NewFromInt(20)
	s.AddItem(ctx, p, "", "")

	assert.True(t, s.TotalPrice().Equal(decimal.NewFromInt(50)))
}

func TestStore_ClearZeroesTotals(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &memStorage{})
	s.AddItem(ctx, product(1, "10"), "", "")
	s.AddItem(ctx, product(2, "20"), "", "")

	s.Clear(ctx)

	assert.Equal(t, int64(0), s.TotalItemCount())
	assert.True(t, s.TotalPrice().IsZero())
}

func TestStore_PersistsEveryMutationAndRehydrates(t *testing.T) {
	ctx := context.Background()
	st := &memStorage{}
	s := newStore(t, st)

	s.AddItem(ctx, product(1, "10"), "M", "Preto")
	s.AddItem(ctx, product(2, "20"), "", "")
	s.SetQuantity(ctx, 1, 3, "M", "Preto")
	s.ToggleVisibility()
	assert.Equal(t, 3, st.saves)

	again := newStore(t, st)
	require.Len(t, again.Items(), 2)
	for i, it := range s.Items() {
		assert.Equal(t, it.Key(), again.Items()[i].Key())
		assert.Equal(t, it.Quantity, again.Items()[i].Quantity)
	}
	assert.False(t, again.IsOpen())
}

func TestStore_CorruptStorageStartsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"a":1}`, `[{"product":{"id":0},"quantity":1}]`, `[{"product":{"id":1},"quantity":0}]`} {
		s := newStore(t, &memStorage{data: []byte(raw)})
		assert.Empty(t, s.Items(), raw)
	}

	s := newStore(t, &memStorage{loadErr: errors.New("disk gone")})
	assert.Empty(t, s.Items())
}

func TestStore_SaveFailureKeepsSessionCart(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &memStorage{saveErr: errors.New("quota exceeded")})

	s.AddItem(ctx, product(1, "10"), "", "")

	assert.Equal(t, int64(1), s.TotalItemCount())
}

func TestStore_SubscribeAndClose(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, &memStorage{})

	var got []int64
	cancel := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap.TotalItemCount)
	})

	s.AddItem(ctx, product(1, "10"), "", "")
	s.AddItem(ctx, product(1, "10"), "", "")
	cancel()
	s.AddItem(ctx, product(1, "10"), "", "")
	assert.Equal(t, []int64{1, 2}, got)

	s.Subscribe(func(Snapshot) { t.Fatal("closed store must not notify") })
	s.Close()
	s.AddItem(ctx, product(1, "10"), "", "")
	assert.Equal(t, int64(3), s.TotalItemCount())
}

func TestMarshalRoundTrip(t *testing.T) {
	items := []LineItem{
		{Product: product(1, "129.90"), Quantity: 2, Size: "M", Color: "Preto"},
		{Product: ProductSnapshot{ID: 7, Name: "Top", Price: decimal.RequireFromString("59.9"), Discount: decimal.NewFromInt(15), Category: "tops", Image: "https://cdn/x.png"}, Quantity: 1},
	}

	raw, err := Marshal(items)
	require.NoError(t, err)
	back, err := Unmarshal(raw)
	require.NoError(t, err)

	require.Len(t, back, 2)
	for i := range items {
		assert.Equal(t, items[i].Key(), back[i].Key())
		assert.Equal(t, items[i].Quantity, back[i].Quantity)
		assert.True(t, items[i].Product.Price.Equal(back[i].Product.Price))
		assert.True(t, items[i].Product.Discount.Equal(back[i].Product.Discount))
	}

	empty, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestWhatsAppMessage(t *testing.T) {
	items := []LineItem{
		{Product: ProductSnapshot{ID: 1, Name: "Legging", Price: decimal.RequireFromString("89.90")}, Quantity: 2, Size: "M", Color: "Preto"},
		{Product: ProductSnapshot{ID: 2, Name: "Top", Price: decimal.RequireFromString("49.90")}, Quantity: 1},
	}

	msg := WhatsAppMessage(items)

	assert.Equal(t, "Olá! Gostaria de fazer um pedido:\n\n"+
		"- Legging (x2) - R$ 179,80 | Tam: M | Cor: Preto\n"+
		"- Top (x1) - R$ 49,90\n\n"+
		"*Total: R$ 229,70*", msg)
	assert.Contains(t, WhatsAppURL("553598985318", items), "https://wa.me/553598985318?text=")
}
