package snapshots

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore keeps the most recent snapshots of each graph in memory.
// A limit of zero keeps everything.
type MemoryStore struct {
	snapshots map[Key]*Snapshot
	order     map[string][]uint64
	limit     int
	mu        sync.RWMutex
}

func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[Key]*Snapshot),
		order:     make(map[string][]uint64),
		limit:     limit,
	}
}

func (m *MemoryStore) Save(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.snapshots[s.Key]; !exists {
		m.order[s.Key.GraphID] = append(m.order[s.Key.GraphID], s.Key.Revision)
	}
	m.snapshots[s.Key] = &s

	revs := m.order[s.Key.GraphID]
	for m.limit > 0 && len(revs) > m.limit {
		delete(m.snapshots, Key{GraphID: s.Key.GraphID, Revision: revs[0]})
		revs = revs[1:]
	}
	m.order[s.Key.GraphID] = revs
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key Key) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.snapshots[key]
	if !exists {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	return s, nil
}

func (m *MemoryStore) Latest(ctx context.Context, graphID string) (*Snapshot, error) {
	m.mu.RLock()
	revs := m.order[graphID]
	m.mu.RUnlock()

	if len(revs) == 0 {
		return nil, fmt.Errorf("%w: graph %s has no snapshots", ErrNotFound, graphID)
	}
	return m.Load(ctx, Key{GraphID: graphID, Revision: revs[len(revs)-1]})
}

func (m *MemoryStore) List(_ context.Context, graphID string) ([]Key, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]Key, 0, len(m.order[graphID]))
	for _, rev := range m.order[graphID] {
		keys = append(keys, Key{GraphID: graphID, Revision: rev})
	}
	return keys, nil
}

func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.snapshots, key)
	m.order[key.GraphID] = slices.DeleteFunc(m.order[key.GraphID], func(rev uint64) bool {
		return rev == key.Revision
	})
	return nil
}
