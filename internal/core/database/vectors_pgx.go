package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/emdili/docrag/internal/core"
)

type VectorStore struct {
	db *sql.DB
}

func NewVectorStore(db *sql.DB) *VectorStore {
	return &VectorStore{db: db}
}

// Put upserts all entries in a single transaction.
func (s *VectorStore) Put(ctx context.Context, entries []core.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO vector_chunks (key, owner_id, filename, chunk_index, embedding, text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			text = EXCLUDED.text
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range entries {
		e := &entries[i]
		vec := pgvector.NewVector(e.Embedding)
		if _, err := stmt.ExecContext(ctx,
			e.Key, e.OwnerID, e.Filename, e.ChunkIndex, vec, e.Text,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Query returns the owner's topK nearest chunks by L2 distance.
func (s *VectorStore) Query(ctx context.Context, embedding []float32, topK int, ownerID string) ([]core.VectorMatch, error) {
	const q = `
		SELECT key, filename, text, embedding <-> $1 AS distance
		FROM vector_chunks
		WHERE owner_id = $2
		ORDER BY embedding <-> $1
		LIMIT $3
	`
	vec := pgvector.NewVector(embedding)
	rows, err := s.db.QueryContext(ctx, q, vec, ownerID, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.VectorMatch
	for rows.Next() {
		var m core.VectorMatch
		if err := rows.Scan(&m.Key, &m.Filename, &m.Text, &m.Distance); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *VectorStore) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	const q = `DELETE FROM vector_chunks WHERE key = ANY($1)`
	_, err := s.db.ExecContext(ctx, q, keys)
	return err
}

// ListKeys returns every key starting with the given prefix.
func (s *VectorStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	const q = `SELECT key FROM vector_chunks WHERE key LIKE $1 ORDER BY key`
	rows, err := s.db.QueryContext(ctx, q, likePrefix(prefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// likePrefix escapes LIKE metacharacters so the prefix matches
// literally.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

var _ core.VectorIndex = (*VectorStore)(nil)
