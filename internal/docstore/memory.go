package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store implementation. It is not durable and
// resets on process restart; it is intended for development and testing.
// All operations are safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemoryStore creates a new empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *MemoryStore) UpsertMerge(ctx context.Context, collection, id string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.ensure(collection, id)
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// AtomicIncrement adds delta to a numeric field under the store lock, so
// concurrent increments never lose updates.
func (s *MemoryStore) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.ensure(collection, id)
	cur, _ := AsInt64(doc[field])
	doc[field] = cur + delta
	return nil
}

func (s *MemoryStore) QueryByEquality(ctx context.Context, collection, field, value string) ([]Document, error) {
	return s.QueryByEqualityPair(ctx, collection, []Filter{{Field: field, Value: value}})
}

func (s *MemoryStore) QueryByEqualityPair(ctx context.Context, collection string, filters []Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	ids := make([]string, 0, len(docs))
	for id, doc := range docs {
		if matches(doc, filters) {
			ids = append(ids, id)
		}
	}
	// Deterministic iteration order: callers rely on a stable first result.
	sort.Strings(ids)

	result := make([]Document, 0, len(ids))
	for _, id := range ids {
		result = append(result, docs[id].Clone())
	}
	return result, nil
}

func (s *MemoryStore) ensure(collection, id string) Document {
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]Document)
		s.collections[collection] = coll
	}
	doc, ok := coll[id]
	if !ok {
		doc = make(Document)
		coll[id] = doc
	}
	return doc
}

func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if doc.String(f.Field) != f.Value {
			return false
		}
	}
	return true
}
