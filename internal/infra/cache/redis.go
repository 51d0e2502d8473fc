package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	IdempotencyTTL = 24 * time.Hour
	// Stripeの再送は最大3日
	WebhookEventTTL = 72 * time.Hour
)

// 使うコマンドだけに絞ったクライアント
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

// 注文送信の冪等キー → client secret
type IdempotencyStore struct {
	rdb Client
}

func NewIdempotencyStore(rdb Client) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb}
}

func idempotencyKey(userID, key string) string {
	return fmt.Sprintf("idempotent-key:%s:%s", userID, key)
}

// 見つからなければ ok=false
func (s *IdempotencyStore) Lookup(ctx context.Context, userID, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, idempotencyKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, val != "", nil
}

func (s *IdempotencyStore) Remember(ctx context.Context, userID, key, value string) error {
	return s.rdb.Set(ctx, idempotencyKey(userID, key), value, IdempotencyTTL).Err()
}

// webhookイベントの重複排除
type EventDeduper struct {
	rdb Client
}

func NewEventDeduper(rdb Client) *EventDeduper {
	return &EventDeduper{rdb: rdb}
}

// 初めて見たイベントならtrue
func (d *EventDeduper) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	return d.rdb.SetNX(ctx, eventKey(eventID), "seen", WebhookEventTTL).Result()
}

// 処理に失敗したイベントは再送で受け直す
func (d *EventDeduper) Forget(ctx context.Context, eventID string) error {
	return d.rdb.Del(ctx, eventKey(eventID)).Err()
}

func eventKey(id string) string {
	return "stripe-event:" + id
}
