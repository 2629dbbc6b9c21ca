package inmemstore

import (
	"context"
	"sync"

	"github.com/educonnectt/web/core"
)

// Store is an in-memory core.Store for tests and local development.
type Store struct {
	mutex sync.RWMutex
	table map[string]map[string]string // visitorID -> key -> value
}

var _ core.Store = (*Store)(nil)

func New() *Store {
	return &Store{table: make(map[string]map[string]string)}
}

func (s *Store) Get(_ context.Context, visitorID, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if val, ok := s.table[visitorID][key]; ok {
		return val, nil
	}
	return "", core.ErrKeyNotFound
}

func (s *Store) Set(_ context.Context, visitorID, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.table[visitorID]; !ok {
		s.table[visitorID] = make(map[string]string)
	}
	s.table[visitorID][key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, visitorID string, keys ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, key := range keys {
		delete(s.table[visitorID], key)
	}
	return nil
}
