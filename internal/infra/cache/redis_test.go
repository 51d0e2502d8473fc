package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRedis struct{ mock.Mock }

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return redis.NewStringResult(args.String(0), args.Error(1))
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return redis.NewStatusResult("OK", args.Error(0))
}

func (m *mockRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, value, expiration)
	return redis.NewBoolResult(args.Bool(0), args.Error(1))
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return redis.NewIntResult(int64(len(keys)), args.Error(0))
}

func TestIdempotencyStore_LookupMiss(t *testing.T) {
	ctx := context.Background()
	rdb := new(mockRedis)
	rdb.On("Get", ctx, "idempotent-key:u1:k1").Return("", redis.Nil)

	_, ok, err := NewIdempotencyStore(rdb).Lookup(ctx, "u1", "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotencyStore_RememberThenLookup(t *testing.T) {
	ctx := context.Background()
	rdb := new(mockRedis)
	rdb.On("Set", ctx, "idempotent-key:u1:k1", "pi_1_secret_x", IdempotencyTTL).Return(nil)
	rdb.On("Get", ctx, "idempotent-key:u1:k1").Return("pi_1_secret_x", nil)

	s := NewIdempotencyStore(rdb)
	require.NoError(t, s.Remember(ctx, "u1", "k1", "pi_1_secret_x"))

	v, ok, err := s.Lookup(ctx, "u1", "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pi_1_secret_x", v)
	rdb.AssertExpectations(t)
}

func TestIdempotencyStore_LookupError(t *testing.T) {
	ctx := context.Background()
	rdb := new(mockRedis)
	rdb.On("Get", ctx, "idempotent-key:u1:k1").Return("", errors.New("dial tcp: refused"))

	_, _, err := NewIdempotencyStore(rdb).Lookup(ctx, "u1", "k1")
	assert.EqualError(t, err, "dial tcp: refused")
}

func TestEventDeduper_FirstSeen(t *testing.T) {
	ctx := context.Background()
	rdb := new(mockRedis)
	rdb.On("SetNX", ctx, "stripe-event:evt_1", "seen", WebhookEventTTL).Return(true, nil).Once()
	rdb.On("SetNX", ctx, "stripe-event:evt_1", "seen", WebhookEventTTL).Return(false, nil).Once()

	d := NewEventDeduper(rdb)
	first, err := d.FirstSeen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.FirstSeen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, again)
}

func TestEventDeduper_Forget(t *testing.T) {
	ctx := context.Background()
	rdb := new(mockRedis)
	rdb.On("Del", ctx, []string{"stripe-event:evt_2"}).Return(nil)

	require.NoError(t, NewEventDeduper(rdb).Forget(ctx, "evt_2"))
	rdb.AssertExpectations(t)
}
