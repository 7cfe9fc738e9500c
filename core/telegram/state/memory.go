package state

import "sync"

type memoryStore[V any] struct {
	mu     sync.RWMutex
	values map[int64]V
}

// NewMemoryStore constructs an in-memory Store.
func NewMemoryStore[V any]() Store[V] {
	return &memoryStore[V]{values: make(map[int64]V)}
}

func (m *memoryStore[V]) Get(userID int64) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[userID]
	return v, ok
}

func (m *memoryStore[V]) Set(userID int64, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[userID] = v
}

func (m *memoryStore[V]) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, userID)
}

func (m *memoryStore[V]) Update(userID int64, fn func(cur V, ok bool) (V, bool)) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.values[userID]
	next, keep := fn(cur, ok)
	if keep {
		m.values[userID] = next
	} else {
		delete(m.values, userID)
	}
	return next
}

func (m *memoryStore[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
