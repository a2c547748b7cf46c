package core

import (
	"context"
	"time"

	"github.com/emdili/docrag/internal/models"
)

// ObjectStore defines interactions with S3 or any object storage.
// Objects are keyed by owner + filename so a re-upload of the same
// filename overwrites the previous content.
type ObjectStore interface {
	Put(ctx context.Context, ownerID, filename string, data []byte, contentType string) error
	// Get returns (nil, nil) when the object does not exist.
	Get(ctx context.Context, ownerID, filename string) ([]byte, error)
	// Delete is idempotent; deleting a missing object is not an error.
	Delete(ctx context.Context, ownerID, filename string) error
}

// StatusUpdate is a partial update applied to a document record.
// Nil fields are left untouched; ClearError removes any stored
// processing error.
type StatusUpdate struct {
	Status      models.ProcessingStatus
	Error       *string
	ProcessedAt *time.Time
	ClearError  bool
}

// MetadataStore abstracts the document metadata collaborator keyed by
// (owner, filename). Pagination tokens are opaque continuations: pass
// back what the previous call returned, never parse them.
type MetadataStore interface {
	// Put creates or replaces the record for (doc.OwnerID, doc.Filename).
	Put(ctx context.Context, doc *models.Document) error
	// Get returns (nil, nil) when no record exists.
	Get(ctx context.Context, ownerID, filename string) (*models.Document, error)
	// ListByOwner pages through one owner's documents in filename order.
	ListByOwner(ctx context.Context, ownerID string, limit int, token string) ([]models.Document, string, error)
	// ListByStatus pages through documents in a given status; scan
	// semantics, no ordering guarantee.
	ListByStatus(ctx context.Context, status models.ProcessingStatus, limit int, token string) ([]models.Document, string, error)
	UpdateStatus(ctx context.Context, ownerID, filename string, upd StatusUpdate) error
	// Delete is idempotent.
	Delete(ctx context.Context, ownerID, filename string) error
}

// VectorEntry is one embedded chunk written to the vector index. Key
// layout is owner/filename/chunkIndex; OwnerID and Filename are carried
// as filterable metadata and Text is the (possibly truncated) chunk.
type VectorEntry struct {
	Key        string
	OwnerID    string
	Filename   string
	ChunkIndex int
	Embedding  []float32
	Text       string
}

// VectorMatch is one ranked result from a vector index query.
type VectorMatch struct {
	Key      string
	Filename string
	Text     string
	Distance float64
}

// VectorIndex abstracts the vector store.
type VectorIndex interface {
	// Put writes all entries as one logical batch.
	Put(ctx context.Context, entries []VectorEntry) error
	// Query returns the topK nearest neighbors, restricted to ownerID.
	Query(ctx context.Context, embedding []float32, topK int, ownerID string) ([]VectorMatch, error)
	Delete(ctx context.Context, keys []string) error
	// ListKeys returns all keys under a prefix, for delete-by-document.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// UserStore holds account records for the auth surface.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns (nil, nil) when no user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
