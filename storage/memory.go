package storage

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
)

// MemoryStore keeps carts in process memory, keyed like the other backends.
// Nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	key  string
	data map[string][]byte
}

func NewMemoryStore(key string) *MemoryStore {
	return &MemoryStore{key: key, data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[s.key]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "key %q", s.key)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.key] = append([]byte(nil), data...)
	return nil
}
