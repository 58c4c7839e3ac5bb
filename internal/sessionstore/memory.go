package sessionstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// Memory is an in-process Store for tests and single-node development.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Put(_ context.Context, tokenID string, s Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[tokenID] = memoryEntry{session: s, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Get(_ context.Context, tokenID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[tokenID]
	if !ok {
		return Session{}, ErrNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, tokenID)
		return Session{}, ErrNotFound
	}
	return e.session, nil
}

func (m *Memory) Delete(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, tokenID)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}
