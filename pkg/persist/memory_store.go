package persist

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store intended for tests and tools. It uses
// Ref.Identifier() as its key and copies documents on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	data []byte
	meta Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) ([]byte, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return bytes.Clone(record.data), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore) Save(_ context.Context, ref Ref, data []byte, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.records[key]
	if err := checkETag(meta, existing.meta, exists); err != nil {
		return existing.meta, err
	}
	saved := stamp(meta, data, s.now())
	s.records[key] = memoryRecord{data: bytes.Clone(data), meta: saved}
	return cloneMeta(saved), nil
}

// Keys lists stored identifiers in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
