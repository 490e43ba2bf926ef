// Package memdb provides an in-memory RecordStore. It backs unit tests and
// can serve as a throwaway dev backend; nothing survives a restart.
package memdb

import (
	"context"
	"sort"
	"sync"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/shared"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte // partition/collection -> key -> value
}

var _ shared.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{data: make(map[string]map[string][]byte)}
}

func bucketKey(partition, collection string) string {
	return partition + "/" + collection
}

func (s *Store) bucket(partition, collection string) map[string][]byte {
	bk := bucketKey(partition, collection)
	b, ok := s.data[bk]
	if !ok {
		b = make(map[string][]byte)
		s.data[bk] = b
	}
	return b
}

func (s *Store) GetRecord(_ context.Context, partition, collection, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[bucketKey(partition, collection)][key]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneBytes(v), nil
}

func (s *Store) ListRecords(_ context.Context, partition, collection string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.data[bucketKey(partition, collection)]
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		out = append(out, cloneBytes(b[k]))
	}
	return out, nil
}

func (s *Store) CreateRecord(_ context.Context, partition, collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(partition, collection)
	if _, ok := b[key]; ok {
		return models.ErrAlreadyExists
	}
	b[key] = cloneBytes(value)
	return nil
}

func (s *Store) UpdateRecord(_ context.Context, partition, collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(partition, collection)
	if _, ok := b[key]; !ok {
		return models.ErrNotFound
	}
	b[key] = cloneBytes(value)
	return nil
}

func (s *Store) DeleteRecord(_ context.Context, partition, collection, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(partition, collection)
	v, ok := b[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(b, key)
	return cloneBytes(v), nil
}

func (s *Store) DeleteAll(_ context.Context, partition, collection string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bk := bucketKey(partition, collection)
	b := s.data[bk]
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		out = append(out, cloneBytes(b[k]))
	}
	delete(s.data, bk)
	return out, nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
