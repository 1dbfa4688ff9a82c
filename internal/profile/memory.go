package profile

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[int]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[int]Profile)}
}

func (m *MemoryStore) Get(_ context.Context, id int) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) GetMany(_ context.Context, ids []int) ([]Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryStore) Put(_ context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ParticipantID] = p
	return nil
}
