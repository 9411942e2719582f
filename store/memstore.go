package store

import (
	"context"
	"sync"

	"kirana/utils"
)

// MemProfile is an in-memory profile, used by tests and as the fallback
// backend. Open as many handles as the scenario needs "tabs".
type MemProfile struct {
	mu     sync.Mutex
	data   map[string][]byte
	broker *broker
}

func NewMemProfile() *MemProfile {
	return &MemProfile{
		data:   make(map[string][]byte),
		broker: newBroker(),
	}
}

// Open returns a new handle onto the profile.
func (p *MemProfile) Open() Store {
	return &memStore{profile: p, origin: utils.GetUUID()}
}

type memStore struct {
	profile *MemProfile
	origin  string
}

func (s *memStore) Read(_ context.Context, key string) ([]byte, error) {
	p := s.profile
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.data[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *memStore) Write(_ context.Context, key string, data []byte) error {
	p := s.profile
	cp := make([]byte, len(data))
	copy(cp, data)

	p.mu.Lock()
	p.data[key] = cp
	p.mu.Unlock()

	p.broker.publish(Change{Key: key, Origin: s.origin})
	return nil
}

func (s *memStore) Subscribe(fn func(Change)) func() {
	return s.profile.broker.subscribe(s.origin, fn)
}

func (s *memStore) Origin() string { return s.origin }

func (s *memStore) Close() error { return nil }
