package docstore

import (
	"context"
	"errors"
)

// Document is a schemaless record. Field values survive round-trips through
// the backends as string (redis hashes) or float64 (jsonb numbers); readers
// should go through the coercion helpers in fields.go rather than type
// asserting directly.
type Document map[string]any

// Filter is a single field-equality predicate for compound queries.
type Filter struct {
	Field string
	Value string
}

// ErrNotFound is returned by Get when no document exists under the given id.
// Callers treat it as normal control flow, distinct from transient store
// failures.
var ErrNotFound = errors.New("document not found")

// Store is the document store boundary. Implementations must guarantee:
//   - UpsertMerge has merge semantics: fields not present in the write are
//     preserved on the stored document.
//   - AtomicIncrement is atomic at the backend, never a client-side
//     read-modify-write, and creates the document if it does not exist.
//   - Query results are ordered deterministically by document id.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	UpsertMerge(ctx context.Context, collection, id string, fields Document) error
	AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error
	QueryByEquality(ctx context.Context, collection, field, value string) ([]Document, error)
	QueryByEqualityPair(ctx context.Context, collection string, filters []Filter) ([]Document, error)
}

// Clone returns a shallow copy of the document. Backends hand out clones so
// callers cannot mutate stored state.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	cp := make(Document, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}
