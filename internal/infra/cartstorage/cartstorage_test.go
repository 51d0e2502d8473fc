package cartstorage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"oifit/internal/domain/cart"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_MissingFileIsEmpty(t *testing.T) {
	st := NewFileStorage(filepath.Join(t.TempDir(), "nope", "cart.json"))

	data, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileStorage_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cart.json")
	st := NewFileStorage(path)

	require.NoError(t, st.Save(context.Background(), []byte(`[1]`)))
	require.NoError(t, st.Save(context.Background(), []byte(`[]`)))

	data, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStorage_BacksCartStore(t *testing.T) {
	ctx := context.Background()
	st := NewFileStorage(filepath.Join(t.TempDir(), "cart.json"))

	s := cart.Open(ctx, st, zerolog.Nop())
	s.AddItem(ctx, cart.ProductSnapshot{ID: 3, Name: "Short", Price: decimal.NewFromInt(70)}, "P", "")
	s.AddItem(ctx, cart.ProductSnapshot{ID: 3, Name: "Short", Price: decimal.NewFromInt(70)}, "P", "")

	reopened := cart.Open(ctx, st, zerolog.Nop())
	assert.Equal(t, int64(2), reopened.TotalItemCount())
}

func TestMemoryStorage(t *testing.T) {
	st := NewMemoryStorage()
	buf := []byte("abc")
	require.NoError(t, st.Save(context.Background(), buf))
	buf[0] = 'x'

	data, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

type mockRedis struct{ mock.Mock }

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func TestRedisStorage_Key(t *testing.T) {
	assert.Equal(t, "cart-storage:0b7c", Key("0b7c"))
}

func TestRedisStorage_LoadNilIsEmpty(t *testing.T) {
	ctx := context.Background()
	rdb := new(mockRedis)
	rdb.On("Get", ctx, "cart-storage:u1").Return(redis.NewStringResult("", redis.Nil))

	data, err := NewRedisStorage(rdb, "u1").Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRedisStorage_LoadError(t *testing.T) {
	ctx := context.Background()
	rdb := new(mockRedis)
	rdb.On("Get", ctx, "cart-storage:u1").Return(redis.NewStringResult("", errors.New("conn refused")))

	_, err := NewRedisStorage(rdb, "u1").Load(ctx)
	assert.Error(t, err)
}

func TestRedisStorage_Save(t *testing.T) {
	ctx := context.Background()
	rdb := new(mockRedis)
	rdb.On("Set", ctx, "cart-storage:u1", []byte(`[]`), time.Duration(0)).Return(redis.NewStatusResult("OK", nil))
	rdb.On("Get", ctx, "cart-storage:u1").Return(redis.NewStringResult(`[]`, nil))

	st := NewRedisStorage(rdb, "u1")
	require.NoError(t, st.Save(ctx, []byte(`[]`)))
	data, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	rdb.AssertExpectations(t)
}

func TestMemorySlots_SeparatePerUser(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()

	require.NoError(t, slots.For("u1").Save(ctx, []byte(`[1]`)))
	assert.Same(t, slots.For("u1"), slots.For("u1"))

	other, err := slots.For("u2").Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, other)

	mine, err := slots.For("u1").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), mine)
}
