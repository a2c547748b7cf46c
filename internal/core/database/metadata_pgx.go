package database

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/emdili/docrag/internal/core"
	"github.com/emdili/docrag/internal/models"
)

type MetadataStore struct {
	db *sql.DB
}

func NewMetadataStore(db *sql.DB) *MetadataStore {
	return &MetadataStore{db: db}
}

// Put inserts the record or fully replaces the row for the same
// (owner_id, filename).
func (s *MetadataStore) Put(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(owner_id, filename, format, size_bytes, uploaded_at, status, processing_error, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id, filename) DO UPDATE SET
			format = EXCLUDED.format,
			size_bytes = EXCLUDED.size_bytes,
			uploaded_at = EXCLUDED.uploaded_at,
			status = EXCLUDED.status,
			processing_error = EXCLUDED.processing_error,
			processed_at = EXCLUDED.processed_at
	`
	_, err := s.db.ExecContext(ctx, q,
		doc.OwnerID, doc.Filename, doc.Format, doc.SizeBytes,
		doc.UploadedAt, doc.Status, doc.ProcessingError, doc.ProcessedAt)
	return err
}

// Get returns (nil, nil) when the owner has no such document.
func (s *MetadataStore) Get(ctx context.Context, ownerID, filename string) (*models.Document, error) {
	const q = `
		SELECT owner_id, filename, format, size_bytes, uploaded_at, status, processing_error, processed_at
		FROM documents
		WHERE owner_id = $1 AND filename = $2
	`
	var d models.Document
	err := s.db.QueryRowContext(ctx, q, ownerID, filename).Scan(
		&d.OwnerID, &d.Filename, &d.Format, &d.SizeBytes,
		&d.UploadedAt, &d.Status, &d.ProcessingError, &d.ProcessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByOwner pages in filename order. The token is the last filename
// of the previous page; an empty next token means the listing is done.
func (s *MetadataStore) ListByOwner(ctx context.Context, ownerID string, limit int, token string) ([]models.Document, string, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
		SELECT owner_id, filename, format, size_bytes, uploaded_at, status, processing_error, processed_at
		FROM documents
		WHERE owner_id = $1 AND filename > $2
		ORDER BY filename
		LIMIT $3
	`
	docs, err := s.scanDocuments(ctx, q, ownerID, token, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(docs) > limit {
		docs = docs[:limit]
		next = docs[len(docs)-1].Filename
	}
	return docs, next, nil
}

// ListByStatus pages across owners in (owner_id, filename) order with
// an opaque base64 token.
func (s *MetadataStore) ListByStatus(ctx context.Context, status models.ProcessingStatus, limit int, token string) ([]models.Document, string, error) {
	if limit <= 0 {
		limit = 50
	}
	afterOwner, afterFilename, err := decodeStatusToken(token)
	if err != nil {
		return nil, "", err
	}

	const q = `
		SELECT owner_id, filename, format, size_bytes, uploaded_at, status, processing_error, processed_at
		FROM documents
		WHERE status = $1 AND (owner_id, filename) > ($2, $3)
		ORDER BY owner_id, filename
		LIMIT $4
	`
	docs, err := s.scanDocuments(ctx, q, status, afterOwner, afterFilename, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(docs) > limit {
		docs = docs[:limit]
		last := docs[len(docs)-1]
		next = encodeStatusToken(last.OwnerID, last.Filename)
	}
	return docs, next, nil
}

// UpdateStatus applies a partial status transition: the error message
// is written only when set, cleared only when requested, and the
// processed timestamp only written when present.
func (s *MetadataStore) UpdateStatus(ctx context.Context, ownerID, filename string, upd core.StatusUpdate) error {
	const q = `
		UPDATE documents SET
			status = $3,
			processing_error = CASE
				WHEN $4::bool THEN NULL
				WHEN $5::text IS NOT NULL THEN $5
				ELSE processing_error
			END,
			processed_at = COALESCE($6, processed_at)
		WHERE owner_id = $1 AND filename = $2
	`
	res, err := s.db.ExecContext(ctx, q, ownerID, filename,
		upd.Status, upd.ClearError, upd.Error, upd.ProcessedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document %s/%s: %w", ownerID, filename, core.ErrNotFound)
	}
	return nil
}

// Delete is idempotent.
func (s *MetadataStore) Delete(ctx context.Context, ownerID, filename string) error {
	const q = `DELETE FROM documents WHERE owner_id = $1 AND filename = $2`
	_, err := s.db.ExecContext(ctx, q, ownerID, filename)
	return err
}

func (s *MetadataStore) scanDocuments(ctx context.Context, query string, args ...any) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.OwnerID, &d.Filename, &d.Format, &d.SizeBytes,
			&d.UploadedAt, &d.Status, &d.ProcessingError, &d.ProcessedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func encodeStatusToken(ownerID, filename string) string {
	return base64.URLEncoding.EncodeToString([]byte(ownerID + "\x00" + filename))
}

func decodeStatusToken(token string) (string, string, error) {
	if token == "" {
		return "", "", nil
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", "", core.NewValidationError("invalid pagination token")
	}
	owner, filename, ok := strings.Cut(string(raw), "\x00")
	if !ok {
		return "", "", core.NewValidationError("invalid pagination token")
	}
	return owner, filename, nil
}

var _ core.MetadataStore = (*MetadataStore)(nil)
