package workorder

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-process Store backed by a mutex-guarded map. It serves
// the "memory" database driver and the test suites; semantics mirror Repo,
// including ordering and last-write-wins on concurrent updates.
type MemStore struct {
	mu      sync.RWMutex
	seq     int64
	records map[int64]WorkOrder
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[int64]WorkOrder)}
}

func (m *MemStore) Create(ctx context.Context, wo *WorkOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	wo.ID = m.seq
	m.records[wo.ID] = *wo
	return nil
}

func (m *MemStore) GetByID(ctx context.Context, id int64) (*WorkOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wo, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &wo, nil
}

func (m *MemStore) List(ctx context.Context, query string) ([]WorkOrder, error) {
	m.mu.RLock()
	items := make([]WorkOrder, 0, len(m.records))
	for _, wo := range m.records {
		if wo.Matches(query) {
			items = append(items, wo)
		}
	}
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (m *MemStore) Update(ctx context.Context, wo *WorkOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[wo.ID]; !ok {
		return ErrNotFound
	}
	m.records[wo.ID] = *wo
	return nil
}

func (m *MemStore) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}
