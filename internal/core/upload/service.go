// Package upload validates incoming documents and orchestrates their
// storage, registration and processing.
package upload

import (
	"context"
	"log/slog"
	"time"

	"github.com/emdili/docrag/internal/core"
	"github.com/emdili/docrag/internal/core/ingest"
	"github.com/emdili/docrag/internal/core/registry"
	"github.com/emdili/docrag/internal/models"
)

// Upload modes: analyze runs the pipeline before the response
// returns; queue leaves the document pending for the batch driver.
const (
	ModeUploadAndAnalyze = "upload_and_analyze"
	ModeUploadAndQueue   = "upload_and_queue"
)

type Service struct {
	registry *registry.Registry
	objects  core.ObjectStore
	vectors  core.VectorIndex
	pipeline *ingest.Pipeline
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(reg *registry.Registry, objects core.ObjectStore, vectors core.VectorIndex, pipeline *ingest.Pipeline, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: reg,
		objects:  objects,
		vectors:  vectors,
		pipeline: pipeline,
		logger:   logger,
		now:      time.Now,
	}
}

// Upload validates the file, stores its content, and creates the
// document record; re-uploading a filename replaces the prior record.
// In analyze mode the pipeline runs before returning and the returned
// record carries the resulting terminal status; a processing failure
// is reported through that status, not as an upload error.
func (s *Service) Upload(ctx context.Context, ownerID, filename, contentType string, data []byte, mode string) (*models.Document, error) {
	if mode != ModeUploadAndAnalyze && mode != ModeUploadAndQueue {
		return nil, core.NewValidationError("mode must be %s or %s", ModeUploadAndAnalyze, ModeUploadAndQueue)
	}
	format, err := ValidateUpload(filename, contentType, int64(len(data)))
	if err != nil {
		return nil, err
	}

	if contentType == "" {
		if format == models.FormatPDF {
			contentType = "application/pdf"
		} else {
			contentType = "text/markdown"
		}
	}
	if err := s.objects.Put(ctx, ownerID, filename, data, contentType); err != nil {
		return nil, &core.DependencyError{Op: "store document content", Err: err}
	}

	status := models.StatusPending
	if mode == ModeUploadAndAnalyze {
		status = models.StatusProcessing
	}
	doc := &models.Document{
		OwnerID:    ownerID,
		Filename:   filename,
		Format:     format,
		SizeBytes:  int64(len(data)),
		UploadedAt: s.now().UTC(),
		Status:     status,
	}
	if err := s.registry.Create(ctx, doc); err != nil {
		return nil, &core.DependencyError{Op: "create document record", Err: err}
	}

	if mode == ModeUploadAndAnalyze {
		if err := s.pipeline.Process(ctx, ownerID, filename); err != nil {
			s.logger.Warn("synchronous processing failed",
				"owner_id", ownerID, "filename", filename, "error", err)
		}
		processed, err := s.registry.Get(ctx, ownerID, filename)
		if err != nil {
			return nil, &core.DependencyError{Op: "reload document record", Err: err}
		}
		if processed != nil {
			doc = processed
		}
	}
	return doc, nil
}

// List pages through the owner's documents in filename order.
func (s *Service) List(ctx context.Context, ownerID string, limit int, token string) ([]models.Document, string, error) {
	return s.registry.ListByOwner(ctx, ownerID, limit, token)
}

// Get returns (nil, nil) when no record exists for this owner.
func (s *Service) Get(ctx context.Context, ownerID, filename string) (*models.Document, error) {
	return s.registry.Get(ctx, ownerID, filename)
}

// Delete removes the document's content, every indexed vector under
// its key prefix, and the record itself. Returns false when the owner
// has no such document.
func (s *Service) Delete(ctx context.Context, ownerID, filename string) (bool, error) {
	doc, err := s.registry.Get(ctx, ownerID, filename)
	if err != nil {
		return false, &core.DependencyError{Op: "load document record", Err: err}
	}
	if doc == nil {
		return false, nil
	}

	if err := s.objects.Delete(ctx, ownerID, filename); err != nil {
		return false, &core.DependencyError{Op: "delete document content", Err: err}
	}

	keys, err := s.vectors.ListKeys(ctx, core.VectorKeyPrefix(ownerID, filename))
	if err != nil {
		return false, &core.DependencyError{Op: "list vector keys", Err: err}
	}
	if len(keys) > 0 {
		if err := s.vectors.Delete(ctx, keys); err != nil {
			return false, &core.DependencyError{Op: "delete vectors", Err: err}
		}
	}

	if err := s.registry.Delete(ctx, ownerID, filename); err != nil {
		return false, &core.DependencyError{Op: "delete document record", Err: err}
	}
	return true, nil
}
