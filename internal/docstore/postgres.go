package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on PostgreSQL. Every document lives in one
// `documents` table as a jsonb value keyed by (collection, id). Merge writes
// use the jsonb concatenation operator; increments are a single INSERT ... ON
// CONFLICT statement, so they are atomic at the row level.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// InitSchema creates the documents table and its query indexes.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection text NOT NULL,
			id         text NOT NULL,
			doc        jsonb NOT NULL DEFAULT '{}'::jsonb,
			PRIMARY KEY (collection, id)
		);
		CREATE INDEX IF NOT EXISTS documents_service_idx
			ON documents (collection, (doc->>'serviceId'));
		CREATE INDEX IF NOT EXISTS documents_status_idx
			ON documents (collection, (doc->>'status'));
	`)
	if err != nil {
		return fmt.Errorf("failed to init documents schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT doc FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return decodeDoc(raw)
}

func (s *PostgresStore) UpsertMerge(ctx context.Context, collection, id string, fields Document) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, doc)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id)
		DO UPDATE SET doc = documents.doc || EXCLUDED.doc
	`, collection, id, payload)
	if err != nil {
		return fmt.Errorf("failed to merge %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, doc)
		VALUES ($1, $2, jsonb_build_object($3::text, $4::bigint))
		ON CONFLICT (collection, id)
		DO UPDATE SET doc = documents.doc || jsonb_build_object(
			$3::text, COALESCE((documents.doc->>$3)::bigint, 0) + $4::bigint)
	`, collection, id, field, delta)
	if err != nil {
		return fmt.Errorf("failed to increment %s/%s.%s: %w", collection, id, field, err)
	}
	return nil
}

func (s *PostgresStore) QueryByEquality(ctx context.Context, collection, field, value string) ([]Document, error) {
	return s.QueryByEqualityPair(ctx, collection, []Filter{{Field: field, Value: value}})
}

func (s *PostgresStore) QueryByEqualityPair(ctx context.Context, collection string, filters []Filter) ([]Document, error) {
	var sb strings.Builder
	sb.WriteString("SELECT doc FROM documents WHERE collection = $1")
	args := []any{collection}
	for _, f := range filters {
		sb.WriteString(fmt.Sprintf(" AND doc->>$%d = $%d", len(args)+1, len(args)+2))
		args = append(args, f.Field, f.Value)
	}
	sb.WriteString(" ORDER BY id")

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", collection, err)
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", collection, err)
	}
	return result, nil
}

func decodeDoc(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}
