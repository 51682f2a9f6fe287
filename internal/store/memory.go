package store

import (
	"sync"
)

// MemoryBackend keeps values in a map. Quota, when positive, caps the total
// size of stored values the way browser storage does.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string
	Quota  int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Quota > 0 {
		used := len(value)
		for k, v := range m.values {
			if k != key {
				used += len(v)
			}
		}
		if used > m.Quota {
			return ErrQuotaExceeded
		}
	}
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
