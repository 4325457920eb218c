package docstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis. Each document is a hash under
// doc:<collection>:<id>; counter fields are incremented with HINCRBY, which
// makes AtomicIncrement safe across concurrent writers without any locking.
//
// Equality queries need secondary indexes: for every indexed field the store
// maintains a set idx:<collection>:<field>:<value> of document ids, updated
// on each merge write. Querying a non-indexed field is an error.
type RedisStore struct {
	client  *redis.Client
	indexes map[string][]string
}

// NewRedisStore creates a redis-backed store. indexes maps a collection name
// to the fields that must support equality queries.
func NewRedisStore(client *redis.Client, indexes map[string][]string) *RedisStore {
	return &RedisStore{client: client, indexes: indexes}
}

func docKey(collection, id string) string {
	return fmt.Sprintf("doc:%s:%s", collection, id)
}

func idxKey(collection, field, value string) string {
	return fmt.Sprintf("idx:%s:%s:%s", collection, field, value)
}

func (s *RedisStore) indexedFields(collection string) []string {
	return s.indexes[collection]
}

func (s *RedisStore) isIndexed(collection, field string) bool {
	for _, f := range s.indexedFields(collection) {
		if f == field {
			return true
		}
	}
	return false
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (Document, error) {
	vals, err := s.client.HGetAll(ctx, docKey(collection, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get %s/%s: %w", collection, id, err)
	}
	if len(vals) == 0 {
		return nil, ErrNotFound
	}
	return fromHash(vals), nil
}

func (s *RedisStore) UpsertMerge(ctx context.Context, collection, id string, fields Document) error {
	key := docKey(collection, id)

	// Re-point index sets for indexed fields whose value changes.
	var reindex []string
	for _, f := range s.indexedFields(collection) {
		if _, ok := fields[f]; ok {
			reindex = append(reindex, f)
		}
	}
	old := map[string]string{}
	if len(reindex) > 0 {
		vals, err := s.client.HMGet(ctx, key, reindex...).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("redis index read %s/%s: %w", collection, id, err)
		}
		for i, f := range reindex {
			if i < len(vals) {
				if sv, ok := vals[i].(string); ok {
					old[f] = sv
				}
			}
		}
	}

	pipe := s.client.Pipeline()
	flat := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		flat = append(flat, k, encodeValue(v))
	}
	pipe.HSet(ctx, key, flat...)
	for _, f := range reindex {
		newVal := encodeValue(fields[f])
		if prev, ok := old[f]; ok && prev != "" && prev != newVal {
			pipe.SRem(ctx, idxKey(collection, f, prev), id)
		}
		pipe.SAdd(ctx, idxKey(collection, f, newVal), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis merge %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *RedisStore) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	if err := s.client.HIncrBy(ctx, docKey(collection, id), field, delta).Err(); err != nil {
		return fmt.Errorf("redis increment %s/%s.%s: %w", collection, id, field, err)
	}
	return nil
}

func (s *RedisStore) QueryByEquality(ctx context.Context, collection, field, value string) ([]Document, error) {
	return s.QueryByEqualityPair(ctx, collection, []Filter{{Field: field, Value: value}})
}

func (s *RedisStore) QueryByEqualityPair(ctx context.Context, collection string, filters []Filter) ([]Document, error) {
	if len(filters) == 0 {
		return nil, fmt.Errorf("redis query %s: no filters", collection)
	}
	keys := make([]string, 0, len(filters))
	for _, f := range filters {
		if !s.isIndexed(collection, f.Field) {
			return nil, fmt.Errorf("redis query %s: field %q is not indexed", collection, f.Field)
		}
		keys = append(keys, idxKey(collection, f.Field, f.Value))
	}

	var ids []string
	var err error
	if len(keys) == 1 {
		ids, err = s.client.SMembers(ctx, keys[0]).Result()
	} else {
		ids, err = s.client.SInter(ctx, keys...).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("redis query %s: %w", collection, err)
	}
	sort.Strings(ids)

	result := make([]Document, 0, len(ids))
	for _, id := range ids {
		vals, err := s.client.HGetAll(ctx, docKey(collection, id)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis query %s/%s: %w", collection, id, err)
		}
		if len(vals) == 0 {
			// Stale index entry for a deleted document.
			continue
		}
		result = append(result, fromHash(vals))
	}
	return result, nil
}

func fromHash(vals map[string]string) Document {
	doc := make(Document, len(vals))
	for k, v := range vals {
		doc[k] = v
	}
	return doc
}
