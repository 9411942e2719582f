package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"kirana/utils"
)

// One broker per data directory, so every handle opened on the same
// directory within this process shares a change signal. Writes from other
// processes land on disk but are not signalled.
var (
	fileBrokersMu sync.Mutex
	fileBrokers   = map[string]*fileProfile{}
)

type fileProfile struct {
	mu     sync.Mutex
	broker *broker
}

func fileProfileFor(dir string) *fileProfile {
	fileBrokersMu.Lock()
	defer fileBrokersMu.Unlock()
	p, ok := fileBrokers[dir]
	if !ok {
		p = &fileProfile{broker: newBroker()}
		fileBrokers[dir] = p
	}
	return p
}

// OpenFile opens a handle onto the file-backed profile at dir. Each key is
// stored as its own JSON file; writes go through a temp file and rename so
// a reader never observes a partial value.
func OpenFile(dir string) (Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &fileStore{
		dir:     abs,
		origin:  utils.GetUUID(),
		profile: fileProfileFor(abs),
	}, nil
}

type fileStore struct {
	dir     string
	origin  string
	profile *fileProfile
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *fileStore) Read(_ context.Context, key string) ([]byte, error) {
	s.profile.mu.Lock()
	defer s.profile.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *fileStore) Write(_ context.Context, key string, data []byte) error {
	s.profile.mu.Lock()
	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		s.profile.mu.Unlock()
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.profile.mu.Unlock()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		s.profile.mu.Unlock()
		return err
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		s.profile.mu.Unlock()
		return err
	}
	s.profile.mu.Unlock()

	s.profile.broker.publish(Change{Key: key, Origin: s.origin})
	return nil
}

func (s *fileStore) Subscribe(fn func(Change)) func() {
	return s.profile.broker.subscribe(s.origin, fn)
}

func (s *fileStore) Origin() string { return s.origin }

func (s *fileStore) Close() error { return nil }
