package cartstorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "cart-storage"

// RedisStorageで使うコマンドだけ
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ログインユーザーごとのカートスロット
type RedisStorage struct {
	rdb RedisClient
	key string
}

func NewRedisStorage(rdb RedisClient, userID string) *RedisStorage {
	return &RedisStorage{rdb: rdb, key: Key(userID)}
}

func Key(userID string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, userID)
}

func (s *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

// 期限なし（ブラウザのlocalStorageと同じ扱い）
func (s *RedisStorage) Save(ctx context.Context, data []byte) error {
	return s.rdb.Set(ctx, s.key, data, 0).Err()
}
