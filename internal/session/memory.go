package session

import "sync"

// MemoryStore keeps the session in memory. It backs tests and any
// environment where persistence across processes is undesirable.
type MemoryStore struct {
	mu sync.Mutex
	s  Session
	ok bool
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ok {
		return Session{}, nil
	}
	return m.s, nil
}

func (m *MemoryStore) Save(s Session) error {
	if !s.Authenticated() {
		return ErrIncomplete
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	m.ok = true
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = Session{}
	m.ok = false
	return nil
}
