package cart

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// カートの保存先（1キー1スロット）
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// 購読者に渡す状態
type Snapshot struct {
	Items          []LineItem
	Open           bool
	TotalItemCount int64
	TotalPrice     decimal.Decimal
}

// Store owns one cart. Mutations are serialized and each one rewrites the
// storage slot; a failed write is logged and the cart keeps living in memory.
type Store struct {
	mu      sync.Mutex
	storage Storage
	log     zerolog.Logger

	items []LineItem
	open  bool

	subs    map[int]func(Snapshot)
	nextSub int
	closed  bool
}

// Open hydrates the cart from storage once. A corrupt or unreadable slot
// yields an empty cart.
func Open(ctx context.Context, storage Storage, log zerolog.Logger) *Store {
	s := &Store{
		storage: storage,
		log:     log,
		items:   []LineItem{},
		subs:    map[int]func(Snapshot){},
	}

	data, err := storage.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("cart: load failed, starting empty")
		return s
	}

	items, err := Unmarshal(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("cart: stored cart discarded")
		return s
	}
	s.items = items
	return s
}

func (s *Store) find(k Key) int {
	for i, it := range s.items {
		if it.Key() == k {
			return i
		}
	}
	return -1
}

// 同じ組み合わせなら数量+1、なければ末尾に追加。カートを開く。
func (s *Store) AddItem(ctx context.Context, p ProductSnapshot, size, color string) {
	s.mutate(ctx, true, func() {
		k := Key{ProductID: p.ID, Size: size, Color: color}
		if i := s.find(k); i >= 0 {
			s.items[i].Quantity++
		} else {
			s.items = append(s.items, LineItem{Product: p, Quantity: 1, Size: size, Color: color})
		}
		s.open = true
	})
}

// 存在しなければ何もしない
func (s *Store) RemoveItem(ctx context.Context, productID int64, size, color string) {
	s.mutate(ctx, true, func() {
		s.remove(Key{ProductID: productID, Size: size, Color: color})
	})
}

func (s *Store) remove(k Key) {
	if i := s.find(k); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// 0以下は削除と同じ
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int64, size, color string) {
	s.mutate(ctx, true, func() {
		k := Key{ProductID: productID, Size: size, Color: color}
		if quantity <= 0 {
			s.remove(k)
			return
		}
		if i := s.find(k); i >= 0 {
			s.items[i].Quantity = quantity
		}
	})
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, true, func() {
		s.items = []LineItem{}
	})
}

// 表示フラグは保存しない
func (s *Store) ToggleVisibility() {
	s.mutate(context.Background(), false, func() {
		s.open = !s.open
	})
}

func (s *Store) SetVisible(open bool) {
	s.mutate(context.Background(), false, func() {
		s.open = open
	})
}

func (s *Store) mutate(ctx context.Context, persist bool, fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn()
	if persist {
		s.persistLocked(ctx)
	}
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, f := range s.subs {
		subs = append(subs, f)
	}
	s.mu.Unlock()

	for _, f := range subs {
		f(snap)
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := Marshal(s.items)
	if err != nil {
		s.log.Error().Err(err).Msg("cart: encode failed")
		return
	}
	if err := s.storage.Save(ctx, data); err != nil {
		s.log.Warn().Err(err).Msg("cart: save failed, cart kept for this session only")
	}
}

func (s *Store) snapshotLocked() Snapshot {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return Snapshot{
		Items:          items,
		Open:           s.open,
		TotalItemCount: totalItemCount(s.items),
		TotalPrice:     totalPrice(s.items),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Items() []LineItem {
	return s.Snapshot().Items
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Store) TotalItemCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItemCount(s.items)
}

// 割引・送料は含まない
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

// Subscribe registers fn to be called after every change. The returned func
// unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// ログアウト時など。以降の操作は無視される。
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = map[int]func(Snapshot){}
}

func totalItemCount(items []LineItem) int64 {
	var n int64
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func totalPrice(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}
