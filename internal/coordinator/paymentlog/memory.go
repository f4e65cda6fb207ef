package paymentlog

import (
	"context"
	"sync"
)

// MemoryRepository keeps entries in process for tests.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Save(_ context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *MemoryRepository) LatestForOrder(_ context.Context, orderID string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].OrderID == orderID {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

// Entries returns a copy of everything saved so far, oldest first.
func (m *MemoryRepository) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
