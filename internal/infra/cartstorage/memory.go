package cartstorage

import (
	"context"
	"sync"
)

// プロセス内だけのスロット
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...), nil
}

func (s *MemoryStorage) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}

// ユーザーごとのメモリスロット（Redisなしの開発用）
type MemorySlots struct {
	mu    sync.Mutex
	slots map[string]*MemoryStorage
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: map[string]*MemoryStorage{}}
}

func (m *MemorySlots) For(userID string) *MemoryStorage {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[userID]
	if !ok {
		s = NewMemoryStorage()
		m.slots[userID] = s
	}
	return s
}
