package session

import (
	"context"
	"sync"
	"time"
)

// memoryStore is the fallback store used when no Redis is configured.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]memoryEntry)}
}

func (m *memoryStore) Save(ctx context.Context, id string, rec *Record, ttl time.Duration) error {
	if rec == nil {
		return nil
	}
	cp := *rec
	cp.Moves = append([]string(nil), rec.Moves...)
	m.mu.Lock()
	m.entries[id] = memoryEntry{rec: cp, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Load(ctx context.Context, id string) (*Record, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, nil
	}
	cp := entry.rec
	cp.Moves = append([]string(nil), entry.rec.Moves...)
	return &cp, nil
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}
