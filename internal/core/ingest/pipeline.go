// Package ingest drives documents through extraction, chunking,
// embedding and vector indexing, and keeps the registry's status
// bookkeeping consistent while doing so.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/emdili/docrag/internal/core"
	"github.com/emdili/docrag/internal/core/chunk"
	"github.com/emdili/docrag/internal/core/extract"
	"github.com/emdili/docrag/internal/core/registry"
	"github.com/emdili/docrag/internal/models"
)

// MetadataTextLimit caps the chunk text stored alongside a vector.
// Oversized text is truncated, never rejected.
const MetadataTextLimit = 2048

// Pipeline processes one document end to end. Concurrent Process
// calls for different (owner, filename) pairs need no coordination;
// the design assumes the caller never double-dispatches the same
// document (a per-document lease would be the production hardening).
type Pipeline struct {
	registry *registry.Registry
	objects  core.ObjectStore
	embedder core.EmbeddingProvider
	vectors  core.VectorIndex
	splitter chunk.Splitter
	logger   *slog.Logger
	now      func() time.Time
}

func NewPipeline(reg *registry.Registry, objects core.ObjectStore, embedder core.EmbeddingProvider, vectors core.VectorIndex, splitter chunk.Splitter, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry: reg,
		objects:  objects,
		embedder: embedder,
		vectors:  vectors,
		splitter: splitter,
		logger:   logger,
		now:      time.Now,
	}
}

// Process runs the full pipeline for one document. It is a no-op for
// an already processed document. Every failure is recorded on the
// registry as a terminal failed status before the error returns, so a
// caller never observes a document stuck in processing. The source
// object is deleted only after indexing succeeded; on failure it is
// always retained.
func (p *Pipeline) Process(ctx context.Context, ownerID, filename string) error {
	doc, err := p.registry.Get(ctx, ownerID, filename)
	if err != nil {
		return &core.DependencyError{Op: "load document record", Err: err}
	}
	if doc == nil {
		return fmt.Errorf("document %s: %w", filename, core.ErrNotFound)
	}
	if doc.Status == models.StatusProcessed {
		return nil
	}

	if err := p.registry.MarkProcessing(ctx, ownerID, filename); err != nil {
		return &core.DependencyError{Op: "mark processing", Err: err}
	}

	if err := p.run(ctx, doc); err != nil {
		if ferr := p.registry.MarkFailed(ctx, ownerID, filename, err.Error()); ferr != nil {
			p.logger.Error("recording failure status failed",
				"owner_id", ownerID, "filename", filename, "error", ferr)
		}
		p.logger.Warn("document processing failed",
			"owner_id", ownerID, "filename", filename, "error", err)
		return err
	}

	if err := p.registry.MarkProcessed(ctx, ownerID, filename, p.now().UTC()); err != nil {
		return &core.DependencyError{Op: "mark processed", Err: err}
	}

	// Cleanup is best-effort and strictly after successful indexing:
	// index success implies the source can be safely discarded.
	if err := p.objects.Delete(ctx, ownerID, filename); err != nil {
		p.logger.Warn("source object cleanup failed",
			"owner_id", ownerID, "filename", filename, "error", err)
	}

	p.logger.Info("document processed", "owner_id", ownerID, "filename", filename)
	return nil
}

// run performs steps 3-6: fetch, extract, chunk, embed, index. No
// partial vector writes: the batch is written only once every chunk
// embedded.
func (p *Pipeline) run(ctx context.Context, doc *models.Document) error {
	content, err := p.objects.Get(ctx, doc.OwnerID, doc.Filename)
	if err != nil {
		return &core.DependencyError{Op: "fetch source object", Err: err}
	}
	if content == nil {
		return fmt.Errorf("document not found in storage: %w", core.ErrNotFound)
	}

	text, err := extract.Text(content, doc.Format)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	chunks := p.splitter.Split(text)
	if len(chunks) == 0 {
		return errors.New("no text extracted from document")
	}

	entries := make([]core.VectorEntry, 0, len(chunks))
	for i, c := range chunks {
		emb, err := p.embedder.EmbedText(ctx, c)
		if err != nil {
			return &core.DependencyError{Op: fmt.Sprintf("embed chunk %d", i), Err: err}
		}
		entries = append(entries, core.VectorEntry{
			Key:        core.VectorKey(doc.OwnerID, doc.Filename, i),
			OwnerID:    doc.OwnerID,
			Filename:   doc.Filename,
			ChunkIndex: i,
			Embedding:  emb,
			Text:       truncateText(c, MetadataTextLimit),
		})
	}

	if err := p.vectors.Put(ctx, entries); err != nil {
		return &core.DependencyError{Op: "index vectors", Err: err}
	}
	return nil
}

// truncateText cuts s to at most n bytes on a rune boundary.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size > 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
