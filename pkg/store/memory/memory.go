package memory

import (
	"context"
	"sync"

	"github.com/zexi/garage-status/pkg/store"
)

// Store keeps rows in process memory. It is meant for local runs and tests;
// nothing survives a restart.
type Store struct {
	mu     sync.Mutex
	tables map[string]map[string]store.Item
}

func New() *Store {
	return &Store{tables: make(map[string]map[string]store.Item)}
}

func (s *Store) GetItem(ctx context.Context, table string, key store.Key) (store.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.tables[table][rowID(key)]
	if !ok {
		return nil, nil
	}
	return store.WithKey(key, item), nil
}

func (s *Store) PutItem(ctx context.Context, table string, key store.Key, attrs store.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		rows = make(map[string]store.Item)
		s.tables[table] = rows
	}
	rows[rowID(key)] = store.WithKey(key, attrs)
	return nil
}

// Len reports the number of rows in table.
func (s *Store) Len(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[table])
}

func rowID(key store.Key) string {
	return key.Name + "=" + key.Value
}
