package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store intended for tests, examples, and hosts
// that keep session state in process. Snapshots are cloned on the way in and
// out so callers cannot alias the stored maps.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	values Values
	meta   Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Values, Meta, bool, error) {
	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return CloneValues(record.values), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, values Values, meta Meta) (Meta, error) {
	stored := stampMeta(meta)
	s.mu.Lock()
	s.records[key] = memoryRecord{values: CloneValues(values), meta: cloneMeta(stored)}
	s.mu.Unlock()
	return stored, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored snapshots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func stampMeta(meta Meta) Meta {
	if meta.SnapshotID == "" {
		meta.SnapshotID = uuid.NewString()
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = time.Now()
	}
	return meta
}
