// Package registry owns document records and their status
// transitions. It is the only writer of processing status; the
// underlying metadata store is an external collaborator and each
// operation is individually atomic against it.
package registry

import (
	"context"
	"time"

	"github.com/emdili/docrag/internal/core"
	"github.com/emdili/docrag/internal/models"
)

type Registry struct {
	store core.MetadataStore
}

func New(store core.MetadataStore) *Registry {
	return &Registry{store: store}
}

// Create upserts the record keyed by (owner, filename): re-uploading
// the same filename replaces the prior record and resets its status.
func (r *Registry) Create(ctx context.Context, doc *models.Document) error {
	return r.store.Put(ctx, doc)
}

// Get returns (nil, nil) when no record exists.
func (r *Registry) Get(ctx context.Context, ownerID, filename string) (*models.Document, error) {
	return r.store.Get(ctx, ownerID, filename)
}

// ListByOwner pages through an owner's documents in filename order.
func (r *Registry) ListByOwner(ctx context.Context, ownerID string, limit int, token string) ([]models.Document, string, error) {
	return r.store.ListByOwner(ctx, ownerID, limit, token)
}

// ListByStatus pages through documents in a status; scan semantics.
func (r *Registry) ListByStatus(ctx context.Context, status models.ProcessingStatus, limit int, token string) ([]models.Document, string, error) {
	return r.store.ListByStatus(ctx, status, limit, token)
}

// MarkProcessing moves a record into processing and clears any prior
// error.
func (r *Registry) MarkProcessing(ctx context.Context, ownerID, filename string) error {
	return r.store.UpdateStatus(ctx, ownerID, filename, core.StatusUpdate{
		Status:     models.StatusProcessing,
		ClearError: true,
	})
}

// MarkProcessed records terminal success: status processed,
// processed_at set, error cleared.
func (r *Registry) MarkProcessed(ctx context.Context, ownerID, filename string, at time.Time) error {
	return r.store.UpdateStatus(ctx, ownerID, filename, core.StatusUpdate{
		Status:      models.StatusProcessed,
		ProcessedAt: &at,
		ClearError:  true,
	})
}

// MarkFailed records terminal failure with the error message.
// processed_at is left untouched.
func (r *Registry) MarkFailed(ctx context.Context, ownerID, filename, message string) error {
	return r.store.UpdateStatus(ctx, ownerID, filename, core.StatusUpdate{
		Status: models.StatusFailed,
		Error:  &message,
	})
}

// Delete removes the record; deleting a missing record is not an
// error.
func (r *Registry) Delete(ctx context.Context, ownerID, filename string) error {
	return r.store.Delete(ctx, ownerID, filename)
}
